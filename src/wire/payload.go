package wire

import "fmt"

// Payload is a variant of the closed protocol payload set. Type returns the
// wire tag stored in the body's "type" field.
type Payload interface {
	Type() string
}

// Init is the handshake request; the first message every node receives.
type Init struct {
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

// InitOk acknowledges an Init.
type InitOk struct{}

// Echo requests that its content be echoed back.
type Echo struct {
	Echo string `json:"echo"`
}

// EchoOk carries the echoed content back to the caller.
type EchoOk struct {
	Echo string `json:"echo"`
}

// Generate requests a globally unique id.
type Generate struct{}

// GenerateOk carries the generated id.
type GenerateOk struct {
	ID string `json:"id"`
}

// Topology assigns each node its gossip neighbours.
type Topology struct {
	Topology map[string][]string `json:"topology"`
}

// TopologyOk acknowledges a Topology.
type TopologyOk struct{}

// Broadcast submits a value to be replicated across the cluster.
type Broadcast struct {
	Message int `json:"message"`
}

// BroadcastOk acknowledges a Broadcast.
type BroadcastOk struct{}

// Read requests the node's current set of known values.
type Read struct{}

// ReadOk carries a snapshot of the known values.
type ReadOk struct {
	Messages []int `json:"messages"`
}

// Gossip carries a node's full known set to a neighbour. It is the only
// fire-and-forget variant; there is no GossipOk.
type Gossip struct {
	Known []int `json:"known"`
}

func (Init) Type() string        { return "init" }
func (InitOk) Type() string      { return "init_ok" }
func (Echo) Type() string        { return "echo" }
func (EchoOk) Type() string      { return "echo_ok" }
func (Generate) Type() string    { return "generate" }
func (GenerateOk) Type() string  { return "generate_ok" }
func (Topology) Type() string    { return "topology" }
func (TopologyOk) Type() string  { return "topology_ok" }
func (Broadcast) Type() string   { return "broadcast" }
func (BroadcastOk) Type() string { return "broadcast_ok" }
func (Read) Type() string        { return "read" }
func (ReadOk) Type() string      { return "read_ok" }
func (Gossip) Type() string      { return "gossip" }

var payloadTypes = map[string]func() Payload{
	"init":         func() Payload { return &Init{} },
	"init_ok":      func() Payload { return &InitOk{} },
	"echo":         func() Payload { return &Echo{} },
	"echo_ok":      func() Payload { return &EchoOk{} },
	"generate":     func() Payload { return &Generate{} },
	"generate_ok":  func() Payload { return &GenerateOk{} },
	"topology":     func() Payload { return &Topology{} },
	"topology_ok":  func() Payload { return &TopologyOk{} },
	"broadcast":    func() Payload { return &Broadcast{} },
	"broadcast_ok": func() Payload { return &BroadcastOk{} },
	"read":         func() Payload { return &Read{} },
	"read_ok":      func() Payload { return &ReadOk{} },
	"gossip":       func() Payload { return &Gossip{} },
}

func newPayload(tag string) (Payload, error) {
	factory, ok := payloadTypes[tag]
	if !ok {
		return nil, fmt.Errorf("unknown payload type %q", tag)
	}
	return factory(), nil
}
