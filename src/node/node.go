package node

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/driftworks/gust/src/config"
	"github.com/driftworks/gust/src/transport"
	"github.com/driftworks/gust/src/wire"
)

// eventBacklog is the capacity of the event queue. Producers block once it is
// full, which applies natural backpressure on the input routine.
const eventBacklog = 64

// Node ties a workload Core to a transport and runs the actor loop around
// them. Two producer routines, the input reader and the gossip timer, feed a
// single event queue; the dispatcher in Run is the queue's only consumer and
// the only routine that calls into the Core.
type Node struct {
	state

	conf   *config.Config
	logger *logrus.Entry

	ident *Identity
	core  Core
	trans transport.Transport

	eventCh    chan Event
	shutdownCh chan struct{}

	controlTimer *ControlTimer

	// recorded by the input routine before it emits Eof; read by the
	// dispatcher after Eof arrives
	inputErr error
}

// NewNode is a factory method that returns a Node instance. The identity must
// come from a completed handshake (see OpenSession).
func NewNode(conf *config.Config, ident *Identity, core Core, trans transport.Transport) *Node {
	return &Node{
		conf:         conf,
		logger:       conf.Logger().WithField("this_id", ident.NodeID),
		ident:        ident,
		core:         core,
		trans:        trans,
		eventCh:      make(chan Event, eventBacklog),
		shutdownCh:   make(chan struct{}),
		controlTimer: NewPeriodicControlTimer(),
	}
}

// RunAsync calls Run on a separate thread.
func (n *Node) RunAsync() {
	go func() {
		if err := n.Run(); err != nil {
			n.logger.WithError(err).Error("Node exited with error")
		}
	}()
}

// Run starts the producer routines and consumes the event queue until the
// input stream ends, then shuts the producers down and joins them. The
// returned error is nil on a clean end-of-input shutdown.
func (n *Node) Run() error {
	n.logger.WithFields(logrus.Fields{
		"peers":           n.ident.Peers,
		"gossip_interval": n.conf.GossipInterval,
		"strict":          n.conf.Strict,
	}).Debug("Run")

	if n.conf.GossipInterval > 0 {
		n.goFunc(func() {
			n.controlTimer.Run(n.conf.GossipInterval)
		})
		n.goFunc(n.timerLoop)
	}

	n.goFunc(n.readLoop)

	err := n.dispatch()

	n.Shutdown()

	if err == nil {
		err = n.inputErr
	}

	return err
}

// dispatch is the sole consumer of the event queue. Events are processed one
// at a time, in arrival order; the queue, not the producers, is the ordering
// authority.
func (n *Node) dispatch() error {
	for {
		ev := <-n.eventCh

		switch e := ev.(type) {
		case Eof:
			n.logger.Debug("End of input")
			return nil

		case GossipTick:
			if err := n.core.HandleTick(); err != nil {
				return err
			}

		case MessageReceived:
			if err := n.core.HandleMessage(e.Envelope); err != nil {
				var unexpected *wire.UnexpectedPayloadError
				if errors.As(err, &unexpected) && !n.conf.Strict {
					n.logger.WithField("type", unexpected.Type).Warn("Ignoring unexpected payload")
					continue
				}
				return err
			}
		}
	}
}

// readLoop is the input actor. It forwards every inbound envelope as an
// event and always finishes by emitting Eof, recording any transport or
// parse error first so Run can surface it.
func (n *Node) readLoop() {
	for {
		env, err := n.trans.Recv()
		if err != nil {
			if err != io.EOF {
				n.inputErr = err
			}
			n.push(Eof{})
			return
		}

		if !n.push(MessageReceived{Envelope: env}) {
			return
		}
	}
}

// timerLoop is the gossip timer actor. It forwards control timer ticks as
// events until the node shuts down.
func (n *Node) timerLoop() {
	for {
		select {
		case <-n.controlTimer.tickCh:
			if !n.push(GossipTick{}) {
				return
			}
		case <-n.shutdownCh:
			return
		}
	}
}

// push enqueues an event. It returns false if the node shut down instead, so
// a producer on a dead node terminates rather than blocking forever.
func (n *Node) push(ev Event) bool {
	select {
	case n.eventCh <- ev:
		return true
	case <-n.shutdownCh:
		return false
	}
}

// Shutdown stops the producer routines, waits for them to finish, and closes
// the transport.
func (n *Node) Shutdown() {
	if n.getState() != Shutdown {
		n.logger.Debug("Shutdown")

		n.setState(Shutdown)

		close(n.shutdownCh)

		n.controlTimer.Shutdown()

		// closing the transport unblocks the input routine, which may be
		// sitting in Recv, so it has to happen before the join
		n.trans.Close()

		n.waitRoutines()
	}
}
