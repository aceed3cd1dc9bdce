// Package node implements the reactive component of a gust node.
//
// A node is driven entirely by a harness that owns its standard streams. The
// harness delivers one JSON envelope per input line and reads the node's
// replies from its output, and may drop, duplicate, delay, or reorder
// messages between node processes.
//
// Bootstrap
//
// Before anything else, the node performs a one-time handshake: the first
// inbound message must be an init request naming the node and the full list
// of cluster members. OpenSession answers it with init_ok and produces an
// Identity, which carries the node id, the peer list, and the outgoing
// message-id counter. A node cannot operate without an Identity, so any
// failure here is fatal.
//
// Actor runtime
//
// After bootstrap, three concurrent routines share a single event queue. An
// input routine reads the transport and turns each inbound envelope into an
// event, ending with a terminal Eof event when the stream closes. A timer
// routine emits a gossip tick at a fixed period. The dispatcher, running in
// Run, is the queue's only consumer: it processes events strictly in arrival
// order and is the only routine that touches workload state, so the workload
// cores need no locks. On Eof the dispatcher stops, shuts the producers down,
// and joins them before returning.
//
// Gossip
//
// The broadcast workload converges through full-state anti-entropy: on every
// tick, a node sends its entire known-value set to each of the neighbours
// listed under its own id in the topology. There are no acknowledgements and
// no retries; because merging is a set union, lost, duplicated, or reordered
// gossip can only delay convergence, never corrupt it.
package node
