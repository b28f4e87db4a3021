package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// maxWarmConcurrency bounds parallel provider calls during Warm.
const maxWarmConcurrency = 4

// Resolver turns a recipe into its steps: cache first, then the provider.
// At most one provider call per signature is in flight at a time, and a
// successful non-empty result is written back to the cache. An empty step
// list is never cached, so the next resolution asks the provider again.
type Resolver struct {
	cache    domain.StepCache
	provider domain.StepProvider
	group    singleflight.Group
	log      *logger.Logger
}

// NewResolver creates a resolver over the given cache and provider.
func NewResolver(cache domain.StepCache, provider domain.StepProvider, log *logger.Logger) *Resolver {
	return &Resolver{
		cache:    cache,
		provider: provider,
		log:      log,
	}
}

// Cached returns the cached steps for ref without calling the provider.
func (r *Resolver) Cached(ref domain.RecipeRef) ([]domain.CookingStep, bool) {
	return r.lookup(ref.Signature())
}

// Seed stores steps for ref, as if the provider had produced them. An
// empty list is ignored.
func (r *Resolver) Seed(ref domain.RecipeRef, steps []domain.CookingStep) {
	if len(steps) == 0 {
		return
	}
	r.cache.Put(ref.Signature(), steps)
}

// ClearCache drops every memoized step list. Recipes resolve through the
// provider again afterwards.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
	r.log.Info("step cache cleared")
}

// lookup treats an empty cached list as a miss.
func (r *Resolver) lookup(sig domain.RecipeSignature) ([]domain.CookingStep, bool) {
	steps, ok := r.cache.Get(sig)
	if !ok || len(steps) == 0 {
		return nil, false
	}
	return steps, true
}

// Resolve returns the steps for ref. Concurrent callers for the same
// signature share one provider call. The shared call is detached from the
// callers' cancellation; a caller whose ctx ends stops waiting and gets
// ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, ref domain.RecipeRef) ([]domain.CookingStep, error) {
	sig := ref.Signature()
	if steps, ok := r.lookup(sig); ok {
		return steps, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(sig.String(), func() (any, error) {
		if steps, ok := r.lookup(sig); ok {
			return steps, nil
		}

		r.log.Info("fetching steps for %q (%d ingredients)", ref.Name, len(ref.Ingredients))
		steps, err := r.provider.FetchSteps(fetchCtx, ref.Name, ref.Ingredients)
		if err != nil {
			r.log.Warn("fetching steps for %q failed: %v", ref.Name, err)
			return nil, err
		}

		if len(steps) == 0 {
			r.log.Warn("provider returned no steps for %q; not caching", ref.Name)
			return steps, nil
		}
		r.cache.Put(sig, steps)
		r.log.Debug("resolved %d steps for %q", len(steps), ref.Name)
		return steps, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.log.Debug("shared in-flight fetch for %q", ref.Name)
		}
		return domain.CloneSteps(res.Val.([]domain.CookingStep)), nil
	}
}

// Warm resolves every recipe in parallel so later opens hit the cache.
// It returns the first failure; recipes that succeeded stay cached.
func (r *Resolver) Warm(ctx context.Context, refs ...domain.RecipeRef) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWarmConcurrency)

	for _, ref := range refs {
		g.Go(func() error {
			if _, err := r.Resolve(ctx, ref); err != nil {
				return fmt.Errorf("warming %q: %w", ref.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
