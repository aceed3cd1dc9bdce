package node

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

// UniqueIDCore answers generate requests with a fresh UUIDv4. Uniqueness
// holds across nodes without coordination because the ids are random.
type UniqueIDCore struct {
	ident  *Identity
	trans  transport.Transport
	logger *logrus.Entry
}

// NewUniqueIDCore creates a UniqueIDCore.
func NewUniqueIDCore(ident *Identity, trans transport.Transport, logger *logrus.Entry) *UniqueIDCore {
	return &UniqueIDCore{
		ident:  ident,
		trans:  trans,
		logger: logger.WithField("workload", "unique-id"),
	}
}

// HandleMessage implements the Core interface.
func (c *UniqueIDCore) HandleMessage(env *wire.Envelope) error {
	switch env.Body.Payload.(type) {
	case *wire.Generate:
		resp := &wire.GenerateOk{ID: uuid.New().String()}
		return c.trans.Send(env.Response(c.ident.NextMsgID(), resp))
	default:
		return &wire.UnexpectedPayloadError{Type: env.Body.Payload.Type()}
	}
}

// HandleTick implements the Core interface; unique-id has no periodic work.
func (c *UniqueIDCore) HandleTick() error {
	return nil
}
