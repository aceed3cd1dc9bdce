package node

import (
	"github.com/sirupsen/logrus"

	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

// EchoCore answers every echo request with an echo_ok carrying the same
// content. It is stateless.
type EchoCore struct {
	ident  *Identity
	trans  transport.Transport
	logger *logrus.Entry
}

// NewEchoCore creates an EchoCore.
func NewEchoCore(ident *Identity, trans transport.Transport, logger *logrus.Entry) *EchoCore {
	return &EchoCore{
		ident:  ident,
		trans:  trans,
		logger: logger.WithField("workload", "echo"),
	}
}

// HandleMessage implements the Core interface.
func (c *EchoCore) HandleMessage(env *wire.Envelope) error {
	switch p := env.Body.Payload.(type) {
	case *wire.Echo:
		resp := &wire.EchoOk{Echo: p.Echo}
		return c.trans.Send(env.Response(c.ident.NextMsgID(), resp))
	default:
		return &wire.UnexpectedPayloadError{Type: env.Body.Payload.Type()}
	}
}

// HandleTick implements the Core interface; echo has no periodic work.
func (c *EchoCore) HandleTick() error {
	return nil
}
