// Package recipe provides the built-in recipe catalog. The catalog also
// serves as an offline step provider when no LLM is configured.
package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.StepProvider = (*Catalog)(nil)

// Recipe is a catalog entry: the identity the engine cooks plus
// hand-written steps.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	Ingredients []string
	Steps       []domain.CookingStep
}

// Ref returns the identity passed to the session controller.
func (r *Recipe) Ref() domain.RecipeRef {
	return domain.RecipeRef{Name: r.Name, Ingredients: r.Ingredients}
}

// TotalTimerMinutes sums the timed steps.
func (r *Recipe) TotalTimerMinutes() int {
	total := 0
	for _, s := range r.Steps {
		total += s.TimeMinutes
	}
	return total
}

// Summary is the lightweight view used by pickers.
type Summary struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// Catalog holds recipes in memory. Safe for concurrent reads.
type Catalog struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
	log     *logger.Logger
}

// NewCatalog creates a catalog preloaded with the built-in recipes.
func NewCatalog(log *logger.Logger) *Catalog {
	c := &Catalog{
		recipes: make(map[string]*Recipe),
		log:     log,
	}
	c.seed()
	return c
}

// List returns summaries of all recipes, sorted by name.
func (c *Catalog) List(ctx context.Context) ([]Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.log.Debug("listing all recipes, count=%d", len(c.recipes))

	out := make([]Summary, 0, len(c.recipes))
	for _, r := range c.recipes {
		out = append(out, summarize(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a recipe by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.recipes[id]
	if !ok {
		c.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// FindByName returns the recipe whose name matches, ignoring case.
func (c *Catalog) FindByName(ctx context.Context, name string) (*Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.recipes {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Search returns recipes whose name, description or tags contain the
// query string. Results are sorted by name.
func (c *Catalog) Search(ctx context.Context, query string) ([]Summary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(query)
	c.log.Debug("searching recipes for: %s", q)

	var out []Summary
	for _, r := range c.recipes {
		if matches(r, q) {
			out = append(out, summarize(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Refs returns the identity of every recipe, for cache warm-up.
func (c *Catalog) Refs() []domain.RecipeRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.RecipeRef, 0, len(c.recipes))
	for _, r := range c.recipes {
		out = append(out, r.Ref())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FetchSteps serves the hand-written steps of a catalog recipe. A recipe
// the catalog does not know is reported as a KindOther failure.
func (c *Catalog) FetchSteps(ctx context.Context, recipeName string, ingredients []string) ([]domain.CookingStep, error) {
	r, err := c.FindByName(ctx, recipeName)
	if err != nil {
		return nil, domain.NewNetworkError(domain.KindOther, fmt.Errorf("no built-in steps for %q", recipeName))
	}
	c.log.Debug("serving %d built-in steps for %q", len(r.Steps), r.Name)
	return domain.CloneSteps(r.Steps), nil
}

func summarize(r *Recipe) Summary {
	return Summary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

func matches(r *Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// seed populates the catalog with built-in recipes.
func (c *Catalog) seed() {
	recipes := []*Recipe{
		tomatoSoup(),
		vegetableStirFry(),
		chickenAlfredo(),
	}
	for _, r := range recipes {
		c.recipes[r.ID] = r
	}
	c.log.Debug("seeded %d recipes", len(recipes))
}
