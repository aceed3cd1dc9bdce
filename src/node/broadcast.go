package node

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

// BroadcastCore replicates a set of integer values across the cluster.
//
// Client-facing requests (broadcast, read, topology) are acknowledged
// immediately; replication happens in the background through periodic
// full-state gossip to the node's topology neighbours. The known set only
// ever grows, and merging is a plain set union, so gossip is idempotent,
// commutative and associative.
//
// A nil topology means the node has not received its topology yet; gossip is
// skipped until it has.
type BroadcastCore struct {
	ident  *Identity
	trans  transport.Transport
	logger *logrus.Entry

	known    map[int]struct{}
	topology map[string][]string
}

// NewBroadcastCore creates a BroadcastCore with an empty known set and no
// topology.
func NewBroadcastCore(ident *Identity, trans transport.Transport, logger *logrus.Entry) *BroadcastCore {
	return &BroadcastCore{
		ident:  ident,
		trans:  trans,
		logger: logger.WithField("workload", "broadcast"),
		known:  make(map[int]struct{}),
	}
}

// HandleMessage implements the Core interface.
func (c *BroadcastCore) HandleMessage(env *wire.Envelope) error {
	switch p := env.Body.Payload.(type) {
	case *wire.Topology:
		// last write wins if the harness re-sends the topology
		c.topology = p.Topology
		c.logger.WithField("neighbours", c.topology[c.ident.NodeID]).Debug("Topology set")
		return c.trans.Send(env.Response(c.ident.NextMsgID(), &wire.TopologyOk{}))

	case *wire.Broadcast:
		c.known[p.Message] = struct{}{}
		// acknowledged before propagation; gossip takes it from here
		return c.trans.Send(env.Response(c.ident.NextMsgID(), &wire.BroadcastOk{}))

	case *wire.Read:
		resp := &wire.ReadOk{Messages: c.snapshot()}
		return c.trans.Send(env.Response(c.ident.NextMsgID(), resp))

	case *wire.Gossip:
		for _, v := range p.Known {
			c.known[v] = struct{}{}
		}
		return nil

	default:
		return &wire.UnexpectedPayloadError{Type: env.Body.Payload.Type()}
	}
}

// HandleTick implements the Core interface. It sends the full known set to
// each neighbour listed under the node's own id in the topology, in stored
// order. Without a topology, or without an entry for this node, the tick is a
// no-op.
func (c *BroadcastCore) HandleTick() error {
	neighbours, ok := c.topology[c.ident.NodeID]
	if !ok {
		return nil
	}

	known := c.snapshot()
	for _, neighbour := range neighbours {
		env := &wire.Envelope{
			Src:  c.ident.NodeID,
			Dst:  neighbour,
			Body: wire.Body{Payload: &wire.Gossip{Known: known}},
		}
		if err := c.trans.Send(env); err != nil {
			return err
		}
	}

	return nil
}

// snapshot returns the known set as a sorted slice.
func (c *BroadcastCore) snapshot() []int {
	values := make([]int, 0, len(c.known))
	for v := range c.known {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}
