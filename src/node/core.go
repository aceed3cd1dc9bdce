package node

import "github.com/driftworks/gust/src/wire"

// Core is a workload state machine. Its methods are only ever called from the
// dispatcher, one event at a time, so implementations hold their state
// without locks.
type Core interface {

	// HandleMessage processes one inbound envelope and sends any replies it
	// calls for. A payload the workload never expects to receive, such as one
	// of the node's own acknowledgements, is reported as a
	// *wire.UnexpectedPayloadError; the caller decides whether that is fatal.
	HandleMessage(env *wire.Envelope) error

	// HandleTick performs one round of the workload's periodic work.
	HandleTick() error
}
