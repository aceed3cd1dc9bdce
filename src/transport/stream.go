package transport

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/driftworks/gust/src/wire"
)

// maxLineSize bounds a single protocol line. Gossip payloads grow with the
// known set, so this is well above anything the harness produces.
const maxLineSize = 16 * 1024 * 1024

type recvResult struct {
	env *wire.Envelope
	err error
}

// StreamTransport reads and writes envelopes over a pair of byte streams, one
// record per line. In production the streams are the process's stdin and
// stdout.
//
// Reading happens on an internal routine so that Recv can be interrupted by
// Close even while the underlying stream is blocked.
type StreamTransport struct {
	scanner *bufio.Scanner
	writer  io.Writer

	writeMu sync.Mutex

	recvCh     chan recvResult
	shutdownCh chan struct{}

	pumpOnce  sync.Once
	closeOnce sync.Once
}

// NewStreamTransport wraps a reader and a writer into a Transport.
func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &StreamTransport{
		scanner:    scanner,
		writer:     w,
		recvCh:     make(chan recvResult),
		shutdownCh: make(chan struct{}),
	}
}

// Recv implements the Transport interface. A decode failure consumes the
// offending line, so a subsequent call reads the following one.
func (t *StreamTransport) Recv() (*wire.Envelope, error) {
	t.pumpOnce.Do(func() {
		go t.pump()
	})

	select {
	case res, ok := <-t.recvCh:
		if !ok {
			return nil, io.EOF
		}
		return res.env, res.err
	case <-t.shutdownCh:
		return nil, io.EOF
	}
}

// pump reads the input stream line by line and hands the decoded envelopes to
// Recv. It exits when the stream ends or the transport is closed; in the
// latter case the routine may stay blocked on the final read until the
// process exits, which is fine because nothing joins on it.
func (t *StreamTransport) pump() {
	defer close(t.recvCh)

	for t.scanner.Scan() {
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		env, err := wire.Decode(line)

		select {
		case t.recvCh <- recvResult{env: env, err: err}:
		case <-t.shutdownCh:
			return
		}
	}

	if err := t.scanner.Err(); err != nil {
		select {
		case t.recvCh <- recvResult{err: err}:
		case <-t.shutdownCh:
		}
	}
}

// Send implements the Transport interface. Writes are serialized so that
// concurrent senders cannot interleave partial lines.
func (t *StreamTransport) Send(env *wire.Envelope) error {
	select {
	case <-t.shutdownCh:
		return fmt.Errorf("transport is closed")
	default:
	}

	line, err := wire.Encode(env)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	_, err = t.writer.Write(line)
	return err
}

// Close implements the Transport interface. The underlying streams are owned
// by the caller and are left open.
func (t *StreamTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.shutdownCh)
	})
	return nil
}
