// Package engine implements the cooking session state machine: step
// resolution, navigation and the per-step countdown, tied together by a
// Controller that the UI drives.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
	"github.com/ahmedmed7t/smartcookly/internal/timer"
)

// ErrNoFavorites is returned by favorites operations when the controller
// was built without a store.
var ErrNoFavorites = errors.New("favorites store not configured")

// Option configures the controller.
type Option func(*Controller)

// WithNotifier sets where timer alerts are delivered.
func WithNotifier(n domain.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithFavorites enables SaveFavorite and OpenFavorite.
func WithFavorites(store domain.FavoritesStore) Option {
	return func(c *Controller) {
		c.favorites = store
	}
}

// WithTickInterval sets the countdown tick interval. Defaults to one second.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// WithClock overrides the time source used for favorites timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller runs one cooking session at a time. All operations are safe
// to call from any goroutine; operations that do not apply to the current
// state are no-ops and return the unchanged state.
type Controller struct {
	id           string
	resolver     *Resolver
	favorites    domain.FavoritesStore
	notifier     domain.Notifier
	log          *logger.Logger
	tickInterval time.Duration
	now          func() time.Time
	countdown    *timer.Countdown

	mu         sync.Mutex
	state      domain.SessionState
	recipe     domain.RecipeRef
	nav        *Navigator
	openGen    uint64
	openCancel context.CancelFunc
	subs       map[int]chan domain.SessionState
	nextSub    int
	closed     bool
}

// NewController creates an idle controller.
func NewController(resolver *Resolver, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		id:           uuid.NewString(),
		resolver:     resolver,
		log:          log,
		tickInterval: 1 * time.Second,
		now:          time.Now,
		state:        domain.Idle{},
		subs:         make(map[int]chan domain.SessionState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.countdown = timer.New(log,
		timer.WithTickInterval(c.tickInterval),
		timer.WithOnChange(c.onTimerChange),
	)
	return c
}

// ID returns the session identifier used in logs.
func (c *Controller) ID() string { return c.id }

// State returns the current session state.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open starts a session for the recipe. A cache hit goes straight to
// Ready; a miss passes through Loading while the provider runs. Open
// blocks until resolution ends and returns the resulting state. If a newer
// Open or Close supersedes this one, its result is dropped and the then
// current state is returned.
func (c *Controller) Open(ctx context.Context, recipeName string, ingredients []string) domain.SessionState {
	ref := domain.RecipeRef{Name: recipeName, Ingredients: slices.Clone(ingredients)}

	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.state
	}
	gen := c.beginOpenLocked(ref)

	if steps, ok := c.resolver.Cached(ref); ok {
		c.log.Info("session %s: %q served from cache", c.id, ref.Name)
		c.enterResolvedLocked(steps)
		defer c.mu.Unlock()
		return c.state
	}

	ctx, cancel := context.WithCancel(ctx)
	c.openCancel = cancel
	c.setStateLocked(domain.Loading{RecipeName: ref.Name})
	c.mu.Unlock()

	steps, err := c.resolver.Resolve(ctx, ref)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.openGen {
		c.log.Debug("session %s: dropping stale result for %q", c.id, ref.Name)
		return c.state
	}
	c.openCancel = nil

	if err != nil {
		kind := domain.Classify(err)
		c.log.Warn("session %s: loading %q failed (%s): %v", c.id, ref.Name, kind, err)
		c.setStateLocked(domain.Failed{
			RecipeName: ref.Name,
			Kind:       kind,
			Message:    domain.UserMessage(err),
		})
		return c.state
	}

	c.enterResolvedLocked(steps)
	return c.state
}

// OpenWithSteps starts a session with steps the caller already has, for
// example from a saved favorite. The steps are written to the cache.
func (c *Controller) OpenWithSteps(recipeName string, ingredients []string, steps []domain.CookingStep) domain.SessionState {
	ref := domain.RecipeRef{Name: recipeName, Ingredients: slices.Clone(ingredients)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state
	}
	c.resolver.Seed(ref, steps)
	c.beginOpenLocked(ref)
	c.log.Info("session %s: %q opened with %d preloaded steps", c.id, ref.Name, len(steps))
	c.enterResolvedLocked(domain.CloneSteps(steps))
	return c.state
}

// OpenFavorite opens a saved favorite without calling the provider.
func (c *Controller) OpenFavorite(ctx context.Context, sig domain.RecipeSignature) (domain.SessionState, error) {
	if c.favorites == nil {
		return c.State(), ErrNoFavorites
	}
	fav, err := c.favorites.Get(ctx, sig)
	if err != nil {
		return c.State(), fmt.Errorf("loading favorite: %w", err)
	}
	return c.OpenWithSteps(fav.RecipeName, fav.Ingredients, fav.Steps), nil
}

// Retry re-opens the failed recipe. No-op unless the session is in the
// error state.
func (c *Controller) Retry(ctx context.Context) domain.SessionState {
	c.mu.Lock()
	if _, ok := c.state.(domain.Failed); !ok || c.closed {
		defer c.mu.Unlock()
		return c.state
	}
	ref := c.recipe
	c.mu.Unlock()

	c.log.Info("session %s: retrying %q", c.id, ref.Name)
	return c.Open(ctx, ref.Name, ref.Ingredients)
}

// Next moves to the next step, resetting the timer. On the last step it
// completes the session instead.
func (c *Controller) Next() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return c.state
	}
	if c.nav.IsLast() {
		c.completeLocked()
		return c.state
	}

	c.countdown.Reset()
	c.nav.Advance()
	c.log.Debug("session %s: step %d/%d", c.id, c.nav.Index()+1, c.nav.Len())
	c.publishReadyLocked()
	return c.state
}

// Previous moves back one step, resetting the timer. No-op on the first
// step.
func (c *Controller) Previous() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() || c.nav.IsFirst() {
		return c.state
	}

	c.countdown.Reset()
	c.nav.Retreat()
	c.log.Debug("session %s: step %d/%d", c.id, c.nav.Index()+1, c.nav.Len())
	c.publishReadyLocked()
	return c.state
}

// Finish completes the session. Only valid on the last step.
func (c *Controller) Finish() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() || !c.nav.IsLast() {
		return c.state
	}
	c.completeLocked()
	return c.state
}

// StartTimer starts the countdown for the current step. No-op when the
// step has no duration.
func (c *Controller) StartTimer() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return c.state
	}
	step, _ := c.nav.CurrentStep()
	if !step.HasTimer() {
		return c.state
	}

	c.countdown.Start(step.TimeMinutes)
	c.log.Info("session %s: timer started for step %d (%d min)", c.id, c.nav.Index()+1, step.TimeMinutes)
	c.publishReadyLocked()
	return c.state
}

// PauseTimer pauses the countdown.
func (c *Controller) PauseTimer() domain.SessionState {
	return c.timerOp(c.countdown.Pause)
}

// ResumeTimer resumes a paused countdown.
func (c *Controller) ResumeTimer() domain.SessionState {
	return c.timerOp(c.countdown.Resume)
}

// ResetTimer clears the countdown.
func (c *Controller) ResetTimer() domain.SessionState {
	return c.timerOp(c.countdown.Reset)
}

func (c *Controller) timerOp(op func()) domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return c.state
	}
	before := c.countdown.State()
	op()
	if c.countdown.State() != before {
		c.publishReadyLocked()
	}
	return c.state
}

// SaveFavorite stores the current recipe and its steps.
func (c *Controller) SaveFavorite(ctx context.Context) error {
	if c.favorites == nil {
		return ErrNoFavorites
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if c.nav == nil {
		c.mu.Unlock()
		return domain.ErrNoSteps
	}
	fav := &domain.Favorite{
		Signature:   c.recipe.Signature(),
		RecipeName:  c.recipe.Name,
		Ingredients: slices.Clone(c.recipe.Ingredients),
		Steps:       domain.CloneSteps(c.nav.Steps()),
		SavedAt:     c.now(),
	}
	c.mu.Unlock()

	if err := c.favorites.Save(ctx, fav); err != nil {
		return fmt.Errorf("saving favorite: %w", err)
	}
	c.log.Info("session %s: %q added to favorites", c.id, fav.RecipeName)
	return nil
}

// Subscribe returns a channel that receives the current state and every
// later change. Delivery is latest-wins: a slow reader skips intermediate
// states but always sees the newest. The channel is closed by the returned
// cancel func or by Close.
func (c *Controller) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		ch <- c.state
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// ClearCache drops every memoized step list. The current session keeps
// its steps; later opens go back to the provider.
func (c *Controller) ClearCache() {
	c.resolver.ClearCache()
}

// Close ends the session: any in-flight Open is abandoned, the countdown
// stops and subscriptions are closed. A session still loading moves to
// Idle, and subscribers see that state before their channel closes.
// Later operations are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.openGen++
	if c.openCancel != nil {
		c.openCancel()
		c.openCancel = nil
	}
	c.countdown.Stop()
	switch c.state.(type) {
	case domain.Loading:
		c.setStateLocked(domain.Idle{})
	case domain.Ready:
		c.publishReadyLocked()
	}
	c.closed = true

	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.log.Debug("session %s: closed", c.id)
}

// onTimerChange runs on the countdown goroutine after each tick.
func (c *Controller) onTimerChange(ts domain.TimerState) {
	c.mu.Lock()
	if !c.readyLocked() {
		c.mu.Unlock()
		return
	}

	// Re-read: a step change may have reset the timer since this tick.
	current := c.countdown.State()
	c.publishReadyLocked()

	finished := ts.Finished && current.Finished
	step, _ := c.nav.CurrentStep()
	stepNo := c.nav.Index() + 1
	c.mu.Unlock()

	if !finished {
		return
	}
	c.log.Info("session %s: timer finished for step %d", c.id, stepNo)
	if c.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Time's up for step %d: %s", stepNo, step.Description)
	if err := c.notifier.NotifyUrgent(context.Background(), msg); err != nil {
		c.log.Warn("session %s: timer notification failed: %v", c.id, err)
	}
}

// beginOpenLocked supersedes any in-flight open and clears the previous
// session. Returns the new open generation.
func (c *Controller) beginOpenLocked(ref domain.RecipeRef) uint64 {
	c.openGen++
	if c.openCancel != nil {
		c.openCancel()
		c.openCancel = nil
	}
	c.countdown.Reset()
	c.recipe = ref
	c.nav = nil
	return c.openGen
}

func (c *Controller) enterResolvedLocked(steps []domain.CookingStep) {
	if len(steps) == 0 {
		c.log.Info("session %s: %q has no steps", c.id, c.recipe.Name)
		c.setStateLocked(domain.Empty{RecipeName: c.recipe.Name})
		return
	}
	c.nav = NewNavigator(steps)
	c.log.Info("session %s: %q ready with %d steps", c.id, c.recipe.Name, c.nav.Len())
	c.publishReadyLocked()
}

func (c *Controller) completeLocked() {
	c.countdown.Reset()
	c.log.Info("session %s: %q complete", c.id, c.recipe.Name)
	c.setStateLocked(domain.Complete{RecipeName: c.recipe.Name, StepCount: c.nav.Len()})
}

func (c *Controller) readyLocked() bool {
	_, ok := c.state.(domain.Ready)
	return ok && !c.closed
}

// publishReadyLocked rebuilds the Ready state from the navigator and the
// countdown. Ready.Steps is shared between snapshots and must be treated
// as read-only.
func (c *Controller) publishReadyLocked() {
	c.setStateLocked(domain.Ready{
		RecipeName: c.recipe.Name,
		Steps:      c.nav.Steps(),
		Index:      c.nav.Index(),
		Timer:      c.countdown.State(),
	})
}

func (c *Controller) setStateLocked(s domain.SessionState) {
	c.state = s
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
