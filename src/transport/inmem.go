package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/driftworks/gust/src/wire"
)

// InmemNetwork routes envelopes between InmemTransports by node id, to allow
// nodes to be tested in-memory without a harness process. Envelopes addressed
// to an id that no transport has joined under are diverted to the client
// channel, standing in for responses that would normally reach a harness
// client.
type InmemNetwork struct {
	sync.RWMutex
	nodes    map[string]*InmemTransport
	clientCh chan *wire.Envelope
}

// NewInmemNetwork creates an empty in-memory network.
func NewInmemNetwork() *InmemNetwork {
	return &InmemNetwork{
		nodes:    make(map[string]*InmemTransport),
		clientCh: make(chan *wire.Envelope, 1024),
	}
}

// Join registers a new transport under the given node id and returns it.
func (n *InmemNetwork) Join(id string) *InmemTransport {
	trans := &InmemTransport{
		network:    n,
		localAddr:  id,
		inboxCh:    make(chan *wire.Envelope, 256),
		shutdownCh: make(chan struct{}),
	}

	n.Lock()
	defer n.Unlock()
	n.nodes[id] = trans

	return trans
}

// ClientCh returns the channel collecting envelopes addressed outside the
// cluster.
func (n *InmemNetwork) ClientCh() <-chan *wire.Envelope {
	return n.clientCh
}

// Deliver injects an envelope into the network, as the harness would.
func (n *InmemNetwork) Deliver(env *wire.Envelope) {
	n.route(env)
}

func (n *InmemNetwork) route(env *wire.Envelope) {
	n.RLock()
	peer, ok := n.nodes[env.Dst]
	n.RUnlock()

	if !ok {
		n.clientCh <- env
		return
	}

	// A message to a shut-down node is dropped, like a message to a dead
	// process.
	select {
	case peer.inboxCh <- env:
	case <-peer.shutdownCh:
	}
}

// InmemTransport implements the Transport interface over channels belonging
// to an InmemNetwork.
type InmemTransport struct {
	network    *InmemNetwork
	localAddr  string
	inboxCh    chan *wire.Envelope
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// LocalAddr returns the node id this transport joined the network under.
func (t *InmemTransport) LocalAddr() string {
	return t.localAddr
}

// Recv implements the Transport interface.
func (t *InmemTransport) Recv() (*wire.Envelope, error) {
	select {
	case env := <-t.inboxCh:
		return env, nil
	case <-t.shutdownCh:
		return nil, io.EOF
	}
}

// Send implements the Transport interface.
func (t *InmemTransport) Send(env *wire.Envelope) error {
	select {
	case <-t.shutdownCh:
		return fmt.Errorf("transport is closed")
	default:
	}

	t.network.route(env)
	return nil
}

// Close implements the Transport interface. Closing ends the node's input
// stream, which is how the harness terminates a node.
func (t *InmemTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.shutdownCh)
	})
	return nil
}
