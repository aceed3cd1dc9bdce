package node

import "time"

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer drives the gossip routine. It emits on tickCh at a fixed
// period until it is shut down.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{} //sends a signal to the listening routine
	shutdownCh   chan struct{} //receives instruction to exit the Run loop
}

// NewControlTimer creates a ControlTimer from a timer factory.
func NewControlTimer(factory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: factory,
		tickCh:       make(chan struct{}),
		shutdownCh:   make(chan struct{}),
	}
}

// NewPeriodicControlTimer creates a ControlTimer that fires at a fixed
// wall-clock period.
func NewPeriodicControlTimer() *ControlTimer {
	return NewControlTimer(func(period time.Duration) <-chan time.Time {
		return time.After(period)
	})
}

// Run emits ticks every period until Shutdown is called. The next period only
// starts once the tick has been consumed, so a slow listener is never flooded.
func (c *ControlTimer) Run(period time.Duration) {
	timer := c.timerFactory(period)
	for {
		select {
		case <-timer:
			select {
			case c.tickCh <- struct{}{}:
			case <-c.shutdownCh:
				return
			}
			timer = c.timerFactory(period)
		case <-c.shutdownCh:
			return
		}
	}
}

// Shutdown causes Run to exit.
func (c *ControlTimer) Shutdown() {
	close(c.shutdownCh)
}
