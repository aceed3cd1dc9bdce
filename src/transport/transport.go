// Package transport moves wire envelopes in and out of a node. The production
// implementation speaks line-delimited JSON over the process's standard
// streams, which the test harness owns; the in-memory implementation wires
// several nodes together inside one process for testing.
package transport

import "github.com/driftworks/gust/src/wire"

// Transport provides the node with a way to exchange envelopes with the rest
// of the network.
type Transport interface {

	// Recv blocks until the next inbound envelope is available. It returns
	// io.EOF when the input stream has ended, and a *wire.ParseError when a
	// line could not be decoded.
	Recv() (*wire.Envelope, error)

	// Send writes one envelope to the network.
	Send(env *wire.Envelope) error

	// Close releases the transport. Subsequent Recv calls return io.EOF and
	// subsequent Send calls fail.
	Close() error
}
