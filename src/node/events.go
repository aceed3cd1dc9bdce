package node

import "github.com/driftworks/gust/src/wire"

// Event is an item on the dispatcher's queue. The set of variants is closed:
// Eof, GossipTick, and MessageReceived.
type Event interface {
	event()
}

// Eof signals that the transport's input stream has ended. It is terminal;
// the dispatcher stops consuming when it arrives.
type Eof struct{}

// GossipTick signals that it is time for a round of gossip.
type GossipTick struct{}

// MessageReceived carries one inbound envelope.
type MessageReceived struct {
	Envelope *wire.Envelope
}

func (Eof) event()             {}
func (GossipTick) event()      {}
func (MessageReceived) event() {}
