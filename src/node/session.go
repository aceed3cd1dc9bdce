package node

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

// Identity is the product of the bootstrap handshake: the node's own id, the
// ids of every other node in the cluster, and the counter for outgoing
// message ids. The counter is only ever touched by the dispatcher.
type Identity struct {
	NodeID string
	Peers  []string

	nextMsgID int
}

// NextMsgID returns the id to stamp on the next outgoing message and advances
// the counter. The counter starts at 1; id 0 is reserved for the init_ok sent
// during the handshake.
func (id *Identity) NextMsgID() *int {
	next := id.nextMsgID
	id.nextMsgID++
	return &next
}

// OpenSession performs the one-time bootstrap handshake. It blocks until the
// first envelope arrives on the transport, which must be an init request,
// acknowledges it with init_ok before any other output, and returns the
// resulting Identity. The peer list preserves the order of node_ids, with the
// node's own id removed.
func OpenSession(trans transport.Transport, logger *logrus.Entry) (*Identity, error) {
	env, err := trans.Recv()
	if err != nil {
		return nil, fmt.Errorf("reading init message: %w", err)
	}

	init, ok := env.Body.Payload.(*wire.Init)
	if !ok {
		return nil, fmt.Errorf("first message should be init, not %s", env.Body.Payload.Type())
	}

	msgID := 0
	if err := trans.Send(env.Response(&msgID, &wire.InitOk{})); err != nil {
		return nil, fmt.Errorf("responding to init message: %w", err)
	}

	peers := make([]string, 0, len(init.NodeIDs))
	for _, nid := range init.NodeIDs {
		if nid != init.NodeID {
			peers = append(peers, nid)
		}
	}

	logger.WithFields(logrus.Fields{
		"node_id": init.NodeID,
		"peers":   peers,
	}).Debug("Session open")

	return &Identity{
		NodeID:    init.NodeID,
		Peers:     peers,
		nextMsgID: 1,
	}, nil
}
