// Package timer implements the per-session countdown: a single
// cancellable tick loop that decrements once per interval and reports a
// terminal finished state when it reaches zero.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Option configures the countdown.
type Option func(*Countdown)

// WithTickInterval sets how long one countdown second lasts. Tests use a
// few milliseconds; production uses the one second default.
func WithTickInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithOnChange registers a callback invoked from the tick loop after each
// applied tick. The callback runs without the countdown lock held, so it
// may call back into the countdown.
func WithOnChange(fn func(domain.TimerState)) Option {
	return func(c *Countdown) {
		c.onChange = fn
	}
}

// Countdown runs one logical countdown at a time. Every operation that
// changes the timer first cancels the live tick loop, so two loops never
// decrement the same state.
type Countdown struct {
	log          *logger.Logger
	tickInterval time.Duration
	onChange     func(domain.TimerState)

	mu      sync.Mutex
	state   domain.TimerState
	gen     uint64 // identifies the live loop; bumped on every cancel
	cancel  context.CancelFunc
	stopped bool
}

// New creates an idle countdown.
func New(log *logger.Logger, opts ...Option) *Countdown {
	c := &Countdown{
		log:          log,
		tickInterval: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current timer snapshot.
func (c *Countdown) State() domain.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start cancels any running countdown and begins a new one of the given
// length. A non-positive length resets the timer instead, because a
// running countdown must have time left.
func (c *Countdown) Start(totalMinutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	if c.stopped {
		return
	}
	if totalMinutes <= 0 {
		c.state = domain.TimerState{}
		c.log.Debug("countdown: start(%d) treated as reset", totalMinutes)
		return
	}

	c.state = domain.TimerState{
		RemainingSeconds: totalMinutes * 60,
		Running:          true,
	}
	c.startLoopLocked()
	c.log.Debug("countdown: started %ds (tick=%s)", c.state.RemainingSeconds, c.tickInterval)
}

// Pause stops ticking and keeps the remaining time. No-op unless running.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Running {
		return
	}
	c.cancelLocked()
	c.state.Running = false
	c.log.Debug("countdown: paused at %ds", c.state.RemainingSeconds)
}

// Resume continues a paused countdown from its remaining time. No-op when
// running, finished, reset, or after Stop.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state.Running || c.state.RemainingSeconds == 0 {
		return
	}
	c.cancelLocked()
	c.state.Running = true
	c.startLoopLocked()
	c.log.Debug("countdown: resumed at %ds", c.state.RemainingSeconds)
}

// Reset cancels ticking and returns the timer to its zero state.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.state = domain.TimerState{}
}

// Stop tears the countdown down. The loop is cancelled and every later
// Start or Resume is ignored. Remaining time is kept for inspection.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.cancelLocked()
	c.state.Running = false
	c.stopped = true
	c.log.Debug("countdown: stopped")
}

// cancelLocked cancels the live loop, if any. Bumping gen makes a loop
// that already woke up drop its pending tick.
func (c *Countdown) cancelLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Countdown) startLoopLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.loop(ctx, c.gen)
}

// loop is the tick loop for one countdown generation.
func (c *Countdown) loop(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick applies one decrement for gen. Returns false when the loop should
// exit.
func (c *Countdown) tick(gen uint64) bool {
	c.mu.Lock()
	if gen != c.gen || !c.state.Running || c.state.RemainingSeconds <= 0 {
		c.mu.Unlock()
		return false
	}

	c.state.RemainingSeconds--
	if c.state.RemainingSeconds == 0 {
		c.state.Running = false
		c.state.Finished = true
		c.cancelLocked()
		c.log.Debug("countdown: finished")
	}
	snapshot := c.state
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snapshot)
	}
	return snapshot.Running
}
