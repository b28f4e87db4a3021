package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
	"github.com/ahmedmed7t/smartcookly/internal/storage"
)

// mockProvider returns canned steps or errors by recipe name and counts
// calls. A gate, when set for a name, blocks FetchSteps until closed.
type mockProvider struct {
	mu    sync.Mutex
	calls map[string]int
	steps map[string][]domain.CookingStep
	errs  map[string]error
	gates map[string]chan struct{}
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		calls: make(map[string]int),
		steps: make(map[string][]domain.CookingStep),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (m *mockProvider) FetchSteps(ctx context.Context, name string, ingredients []string) ([]domain.CookingStep, error) {
	m.mu.Lock()
	m.calls[name]++
	gate := m.gates[name]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return domain.CloneSteps(m.steps[name]), nil
}

func (m *mockProvider) set(name string, steps []domain.CookingStep, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[name] = steps
	m.errs[name] = err
}

func (m *mockProvider) gate(name string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[name] = ch
	return ch
}

func (m *mockProvider) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// mockNotifier records messages.
type mockNotifier struct {
	mu      sync.Mutex
	regular []string
	urgent  []string
}

func (n *mockNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.regular = append(n.regular, msg)
	return nil
}

func (n *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urgent = append(n.urgent, msg)
	return nil
}

func (n *mockNotifier) urgentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.urgent)
}

var soupIngredients = []string{"tomato", "onion"}

func setupController(t *testing.T, opts ...Option) (*Controller, *mockProvider) {
	t.Helper()
	log := logger.Discard()
	provider := newMockProvider()
	provider.set("Tomato Soup", threeSteps(), nil)

	resolver := NewResolver(storage.NewMemoryStepCache(log), provider, log)
	opts = append([]Option{WithTickInterval(2 * time.Millisecond)}, opts...)
	c := NewController(resolver, log, opts...)
	t.Cleanup(c.Close)
	return c, provider
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func mustReady(t *testing.T, s domain.SessionState) domain.Ready {
	t.Helper()
	r, ok := s.(domain.Ready)
	if !ok {
		t.Fatalf("expected ready state, got %s (%+v)", s.Name(), s)
	}
	return r
}

func zeroTimer(t *testing.T, ts domain.TimerState) {
	t.Helper()
	if !ts.IsZero() {
		t.Fatalf("expected reset timer, got %+v", ts)
	}
}

func TestControllerTomatoSoupScenario(t *testing.T) {
	c, provider := setupController(t, WithTickInterval(5*time.Millisecond))

	r := mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))
	if r.Index != 0 || len(r.Steps) != 3 {
		t.Fatalf("expected index 0 of 3, got %d of %d", r.Index, len(r.Steps))
	}
	zeroTimer(t, r.Timer)

	r = mustReady(t, c.Next())
	if r.Index != 1 {
		t.Fatalf("expected index 1, got %d", r.Index)
	}

	r = mustReady(t, c.StartTimer())
	if r.Timer.RemainingSeconds != 300 || !r.Timer.Running || r.Timer.Finished {
		t.Fatalf("expected {300 running}, got %+v", r.Timer)
	}

	waitFor(t, "timer to finish", func() bool {
		r, ok := c.State().(domain.Ready)
		return ok && r.Timer.Finished
	})
	r = mustReady(t, c.State())
	if r.Timer.Running || r.Timer.RemainingSeconds != 0 {
		t.Fatalf("expected finished timer at 0, got %+v", r.Timer)
	}

	r = mustReady(t, c.Next())
	if r.Index != 2 {
		t.Fatalf("expected index 2, got %d", r.Index)
	}
	zeroTimer(t, r.Timer)
	if !r.IsLast() {
		t.Fatal("expected last step")
	}

	done, ok := c.Next().(domain.Complete)
	if !ok {
		t.Fatalf("expected complete, got %s", c.State().Name())
	}
	if done.RecipeName != "Tomato Soup" || done.StepCount != 3 {
		t.Fatalf("unexpected complete state: %+v", done)
	}

	if n := provider.callCount("Tomato Soup"); n != 1 {
		t.Fatalf("expected 1 provider call, got %d", n)
	}
}

func TestControllerCacheHitAvoidsRefetch(t *testing.T) {
	log := logger.Discard()
	provider := newMockProvider()
	provider.set("Tomato Soup", threeSteps(), nil)
	resolver := NewResolver(storage.NewMemoryStepCache(log), provider, log)

	first := NewController(resolver, log)
	defer first.Close()
	second := NewController(resolver, log)
	defer second.Close()
	ctx := context.Background()

	mustReady(t, first.Open(ctx, "Tomato Soup", soupIngredients))
	mustReady(t, first.Open(ctx, "Tomato Soup", soupIngredients))

	states, cancel := second.Subscribe()
	defer cancel()
	<-states // idle

	r := mustReady(t, second.Open(ctx, "Tomato Soup", soupIngredients))
	if len(r.Steps) != 3 {
		t.Fatalf("expected cached 3 steps, got %d", len(r.Steps))
	}
	if got := (<-states).Name(); got != "ready" {
		t.Fatalf("cache hit should go straight to ready, saw %s", got)
	}

	if n := provider.callCount("Tomato Soup"); n != 1 {
		t.Fatalf("expected 1 provider call, got %d", n)
	}

	// Different ingredients are a different signature.
	mustReady(t, first.Open(ctx, "Tomato Soup", []string{"tomato"}))
	if n := provider.callCount("Tomato Soup"); n != 2 {
		t.Fatalf("expected 2 provider calls, got %d", n)
	}
}

func TestControllerReopenStartsFresh(t *testing.T) {
	c, _ := setupController(t)
	ctx := context.Background()

	mustReady(t, c.Open(ctx, "Tomato Soup", soupIngredients))
	c.Next()
	c.StartTimer()

	r := mustReady(t, c.Open(ctx, "Tomato Soup", soupIngredients))
	if r.Index != 0 {
		t.Fatalf("expected index 0 after reopen, got %d", r.Index)
	}
	zeroTimer(t, r.Timer)
}

func TestControllerNavigationBounds(t *testing.T) {
	c, _ := setupController(t)
	mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))

	r := mustReady(t, c.Previous())
	if r.Index != 0 {
		t.Fatalf("previous at first step moved to %d", r.Index)
	}

	if _, ok := c.Finish().(domain.Ready); !ok {
		t.Fatal("finish before the last step should be a no-op")
	}

	c.Next()
	c.Next()
	r = mustReady(t, c.Previous())
	if r.Index != 1 {
		t.Fatalf("expected index 1, got %d", r.Index)
	}
	c.Next()

	if _, ok := c.Finish().(domain.Complete); !ok {
		t.Fatalf("expected finish at last step to complete, got %s", c.State().Name())
	}
}

func TestControllerStepChangeResetsTimer(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, c *Controller)
		move  func(c *Controller) domain.SessionState
	}{
		{
			name:  "next while running",
			setup: func(t *testing.T, c *Controller) { c.StartTimer() },
			move:  (*Controller).Next,
		},
		{
			name:  "previous while running",
			setup: func(t *testing.T, c *Controller) { c.StartTimer() },
			move:  (*Controller).Previous,
		},
		{
			name: "next while paused",
			setup: func(t *testing.T, c *Controller) {
				c.StartTimer()
				c.PauseTimer()
			},
			move: (*Controller).Next,
		},
		{
			name: "previous after finish",
			setup: func(t *testing.T, c *Controller) {
				c.countdown.Start(1)
				waitFor(t, "countdown to finish", func() bool { return c.countdown.State().Finished })
			},
			move: (*Controller).Previous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := setupController(t)
			mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))
			c.Next() // step 2 has the 5 minute timer

			tt.setup(t, c)
			r := mustReady(t, tt.move(c))
			if r.Index == 1 {
				t.Fatal("expected the step to change")
			}
			zeroTimer(t, r.Timer)

			time.Sleep(10 * time.Millisecond)
			zeroTimer(t, mustReady(t, c.State()).Timer)
		})
	}
}

func TestControllerTimerOperations(t *testing.T) {
	c, _ := setupController(t)
	mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))

	// Step 1 has no duration.
	zeroTimer(t, mustReady(t, c.StartTimer()).Timer)

	c.Next()
	c.StartTimer()
	waitFor(t, "a few ticks", func() bool {
		return mustReady(t, c.State()).Timer.RemainingSeconds < 295
	})

	paused := mustReady(t, c.PauseTimer()).Timer
	if paused.Running {
		t.Fatal("expected paused timer")
	}
	time.Sleep(10 * time.Millisecond)
	if got := mustReady(t, c.State()).Timer; got != paused {
		t.Fatalf("paused timer changed: %+v -> %+v", paused, got)
	}

	resumed := mustReady(t, c.ResumeTimer()).Timer
	if !resumed.Running || resumed.RemainingSeconds != paused.RemainingSeconds {
		t.Fatalf("expected resume from %d, got %+v", paused.RemainingSeconds, resumed)
	}

	zeroTimer(t, mustReady(t, c.ResetTimer()).Timer)
	zeroTimer(t, mustReady(t, c.ResetTimer()).Timer)
}

func TestControllerTimerFinishNotifies(t *testing.T) {
	notifier := &mockNotifier{}
	c, _ := setupController(t, WithNotifier(notifier))
	mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))
	c.Next()

	c.countdown.Start(1)
	waitFor(t, "urgent notification", func() bool { return notifier.urgentCount() == 1 })

	time.Sleep(20 * time.Millisecond)
	if n := notifier.urgentCount(); n != 1 {
		t.Fatalf("expected exactly 1 urgent notification, got %d", n)
	}
	if !strings.Contains(notifier.urgent[0], "step 2") {
		t.Fatalf("unexpected notification %q", notifier.urgent[0])
	}
}

func TestControllerProviderErrors(t *testing.T) {
	cause := errors.New("dial tcp: lookup api.example.com: no such host")

	tests := []struct {
		name     string
		err      error
		wantKind domain.ErrorKind
		wantMsg  string
	}{
		{"no internet", domain.NewNetworkError(domain.KindNoInternet, cause), domain.KindNoInternet, "No internet connection"},
		{"server error", domain.NewNetworkError(domain.KindServerError, cause), domain.KindServerError, "Server error. Please try again."},
		{"timeout", domain.NewNetworkError(domain.KindRequestTimeout, cause), domain.KindRequestTimeout, "Request timed out. Please try again."},
		{"other network", domain.NewNetworkError(domain.KindOther, errors.New("bad json")), domain.KindOther, "Failed to load cooking steps: bad json"},
		{"plain error", errors.New("boom"), domain.KindOther, "Failed to load cooking steps: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, provider := setupController(t)
			provider.set("Tomato Soup", nil, tt.err)

			s := c.Open(context.Background(), "Tomato Soup", soupIngredients)
			failed, ok := s.(domain.Failed)
			if !ok {
				t.Fatalf("expected error state, got %s", s.Name())
			}
			if failed.Kind != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, failed.Kind)
			}
			if failed.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, failed.Message)
			}
		})
	}
}

func TestControllerRetry(t *testing.T) {
	c, provider := setupController(t)
	ctx := context.Background()

	// Retry outside the error state does nothing.
	if _, ok := c.Retry(ctx).(domain.Idle); !ok {
		t.Fatalf("expected idle, got %s", c.State().Name())
	}

	provider.set("Tomato Soup", nil, domain.NewNetworkError(domain.KindNoInternet, nil))
	if _, ok := c.Open(ctx, "Tomato Soup", soupIngredients).(domain.Failed); !ok {
		t.Fatalf("expected error state, got %s", c.State().Name())
	}
	// Failures are not cached and not retried automatically.
	if n := provider.callCount("Tomato Soup"); n != 1 {
		t.Fatalf("expected 1 call, got %d", n)
	}

	provider.set("Tomato Soup", threeSteps(), nil)
	r := mustReady(t, c.Retry(ctx))
	if r.RecipeName != "Tomato Soup" || r.Index != 0 {
		t.Fatalf("unexpected ready state after retry: %+v", r)
	}
	if n := provider.callCount("Tomato Soup"); n != 2 {
		t.Fatalf("expected 2 calls, got %d", n)
	}

	if _, ok := c.Retry(ctx).(domain.Ready); !ok {
		t.Fatal("retry in ready should be a no-op")
	}
}

func TestControllerEmptySteps(t *testing.T) {
	c, provider := setupController(t)
	provider.set("Water", []domain.CookingStep{}, nil)

	s := c.Open(context.Background(), "Water", nil)
	empty, ok := s.(domain.Empty)
	if !ok {
		t.Fatalf("expected empty state, got %s", s.Name())
	}
	if empty.RecipeName != "Water" {
		t.Fatalf("unexpected recipe name %q", empty.RecipeName)
	}

	for _, op := range []func() domain.SessionState{c.Next, c.Previous, c.StartTimer, c.Finish} {
		if _, ok := op().(domain.Empty); !ok {
			t.Fatalf("operation changed empty state to %s", c.State().Name())
		}
	}
}

func TestControllerEmptyResultIsNotCached(t *testing.T) {
	c, provider := setupController(t)
	ctx := context.Background()
	provider.set("Omelette", []domain.CookingStep{}, nil)

	if s := c.Open(ctx, "Omelette", nil); s.Name() != "empty" {
		t.Fatalf("expected empty, got %s", s.Name())
	}
	if n := provider.callCount("Omelette"); n != 1 {
		t.Fatalf("expected 1 provider call, got %d", n)
	}

	provider.set("Omelette", []domain.CookingStep{{Description: "Whisk the eggs"}}, nil)
	r := mustReady(t, c.Open(ctx, "Omelette", nil))
	if len(r.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(r.Steps))
	}
	if n := provider.callCount("Omelette"); n != 2 {
		t.Fatalf("expected empty result to be refetched, got %d calls", n)
	}
}

func TestControllerClearCache(t *testing.T) {
	c, provider := setupController(t)
	ctx := context.Background()

	mustReady(t, c.Open(ctx, "Tomato Soup", soupIngredients))
	c.ClearCache()
	if _, ok := c.State().(domain.Ready); !ok {
		t.Fatalf("clearing the cache changed the session to %s", c.State().Name())
	}

	mustReady(t, c.Open(ctx, "Tomato Soup", soupIngredients))
	if n := provider.callCount("Tomato Soup"); n != 2 {
		t.Fatalf("expected a fresh fetch after clearing, got %d calls", n)
	}
}

func TestControllerOperationsOutsideReady(t *testing.T) {
	c, provider := setupController(t)
	ops := map[string]func() domain.SessionState{
		"next":   c.Next,
		"prev":   c.Previous,
		"finish": c.Finish,
		"start":  c.StartTimer,
		"pause":  c.PauseTimer,
		"resume": c.ResumeTimer,
		"reset":  c.ResetTimer,
	}

	check := func(want string) {
		t.Helper()
		for name, op := range ops {
			if got := op().Name(); got != want {
				t.Fatalf("%s in %s moved to %s", name, want, got)
			}
		}
	}

	check("idle")

	gate := provider.gate("Slow Soup")
	provider.set("Slow Soup", threeSteps(), nil)
	done := make(chan domain.SessionState, 1)
	go func() { done <- c.Open(context.Background(), "Slow Soup", nil) }()
	waitFor(t, "loading", func() bool { return c.State().Name() == "loading" })
	check("loading")
	close(gate)
	mustReady(t, <-done)

	c.Next()
	c.Next()
	c.Next()
	check("complete")

	provider.set("Broken", nil, errors.New("boom"))
	c.Open(context.Background(), "Broken", nil)
	check("error")
}

func TestControllerStaleOpenIsDropped(t *testing.T) {
	c, provider := setupController(t)
	gate := provider.gate("Slow Soup")
	provider.set("Slow Soup", threeSteps()[:1], nil)

	done := make(chan domain.SessionState, 1)
	go func() { done <- c.Open(context.Background(), "Slow Soup", nil) }()
	waitFor(t, "slow open to start", func() bool { return provider.callCount("Slow Soup") == 1 })

	r := mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))
	if r.RecipeName != "Tomato Soup" {
		t.Fatalf("expected Tomato Soup, got %q", r.RecipeName)
	}

	close(gate)
	if got, ok := (<-done).(domain.Ready); ok && got.RecipeName != "Tomato Soup" {
		t.Fatalf("stale open returned %q", got.RecipeName)
	}
	if got := mustReady(t, c.State()); got.RecipeName != "Tomato Soup" || len(got.Steps) != 3 {
		t.Fatalf("stale open overwrote state: %+v", got)
	}
}

func TestControllerCloseAbandonsOpen(t *testing.T) {
	c, provider := setupController(t)
	gate := provider.gate("Slow Soup")
	defer close(gate)

	done := make(chan domain.SessionState, 1)
	go func() { done <- c.Open(context.Background(), "Slow Soup", nil) }()
	waitFor(t, "loading", func() bool { return c.State().Name() == "loading" })

	states, cancel := c.Subscribe()
	defer cancel()

	c.Close()
	select {
	case s := <-done:
		if _, ok := s.(domain.Idle); !ok {
			t.Fatalf("expected idle after close, got %s", s.Name())
		}
	case <-time.After(time.Second):
		t.Fatal("open did not return after close")
	}
	if name := c.State().Name(); name != "idle" {
		t.Fatalf("expected idle after close, got %s", name)
	}

	var last domain.SessionState
	for s := range states {
		last = s
	}
	if _, ok := last.(domain.Idle); !ok {
		t.Fatalf("expected subscribers to see idle last, got %v", last)
	}
}

func TestControllerCloseStopsTicking(t *testing.T) {
	c, _ := setupController(t)
	mustReady(t, c.Open(context.Background(), "Tomato Soup", soupIngredients))
	c.Next()
	c.StartTimer()
	waitFor(t, "ticking", func() bool { return mustReady(t, c.State()).Timer.RemainingSeconds < 299 })

	states, cancel := c.Subscribe()
	defer cancel()

	c.Close()
	c.Close()

	before := c.countdown.State()
	time.Sleep(20 * time.Millisecond)
	if after := c.countdown.State(); after.RemainingSeconds != before.RemainingSeconds {
		t.Fatalf("countdown kept ticking after close: %d -> %d", before.RemainingSeconds, after.RemainingSeconds)
	}

	for range states {
	}

	if got := c.Next(); got.Name() != "ready" {
		t.Fatalf("state changed after close: %s", got.Name())
	}
	if got := mustReady(t, c.StartTimer()).Timer; got.Running {
		t.Fatal("timer restarted after close")
	}
	if err := c.SaveFavorite(context.Background()); !errors.Is(err, ErrNoFavorites) {
		t.Fatalf("expected ErrNoFavorites, got %v", err)
	}
}

func TestControllerSubscribe(t *testing.T) {
	c, _ := setupController(t)

	states, cancel := c.Subscribe()
	if got := (<-states).Name(); got != "idle" {
		t.Fatalf("expected initial idle, got %s", got)
	}

	c.Open(context.Background(), "Tomato Soup", soupIngredients)
	if got := (<-states).Name(); got != "ready" {
		t.Fatalf("expected latest state ready, got %s", got)
	}

	c.Next()
	c.Next()
	r := mustReady(t, <-states)
	if r.Index != 2 {
		t.Fatalf("latest-wins should deliver index 2, got %d", r.Index)
	}

	cancel()
	cancel()
	if _, ok := <-states; ok {
		t.Fatal("expected closed channel after cancel")
	}
}

func TestControllerFavorites(t *testing.T) {
	log := logger.Discard()
	store := storage.NewMemoryFavorites(log)
	savedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	c, _ := setupController(t, WithFavorites(store), WithClock(func() time.Time { return savedAt }))
	ctx := context.Background()

	if err := c.SaveFavorite(ctx); !errors.Is(err, domain.ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps before open, got %v", err)
	}

	mustReady(t, c.Open(ctx, "Tomato Soup", soupIngredients))
	if err := c.SaveFavorite(ctx); err != nil {
		t.Fatalf("save favorite: %v", err)
	}

	sig := domain.NewRecipeSignature("Tomato Soup", soupIngredients)
	fav, err := store.Get(ctx, sig)
	if err != nil {
		t.Fatalf("get favorite: %v", err)
	}
	if len(fav.Steps) != 3 || !fav.SavedAt.Equal(savedAt) {
		t.Fatalf("unexpected favorite: %+v", fav)
	}

	// A fresh controller with a failing provider opens the favorite offline.
	provider := newMockProvider()
	provider.set("Tomato Soup", nil, domain.NewNetworkError(domain.KindNoInternet, nil))
	other := NewController(NewResolver(storage.NewMemoryStepCache(log), provider, log), log, WithFavorites(store))
	defer other.Close()

	s, err := other.OpenFavorite(ctx, sig)
	if err != nil {
		t.Fatalf("open favorite: %v", err)
	}
	if r := mustReady(t, s); len(r.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(r.Steps))
	}
	if n := provider.callCount("Tomato Soup"); n != 0 {
		t.Fatalf("expected no provider calls, got %d", n)
	}

	// The preloaded steps were seeded into the cache.
	mustReady(t, other.Open(ctx, "Tomato Soup", soupIngredients))
	if n := provider.callCount("Tomato Soup"); n != 0 {
		t.Fatalf("expected cache hit, got %d provider calls", n)
	}

	if _, err := other.OpenFavorite(ctx, "missing|"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestControllerIDs(t *testing.T) {
	a, _ := setupController(t)
	b, _ := setupController(t)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID(), b.ID())
	}
}
