package recipe

import (
	"context"
	"testing"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

func TestCatalogList(t *testing.T) {
	c := NewCatalog(logger.New(logger.LevelOff, nil))

	recipes, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recipes) < 3 {
		t.Fatalf("expected at least 3 recipes, got %d", len(recipes))
	}
	for i := 1; i < len(recipes); i++ {
		if recipes[i-1].Name > recipes[i].Name {
			t.Fatalf("list not sorted: %s before %s", recipes[i-1].Name, recipes[i].Name)
		}
	}
}

func TestCatalogGet(t *testing.T) {
	c := NewCatalog(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"tomato-soup", nil},
		{"chicken-alfredo", nil},
		{"vegetable-stir-fry", nil},
		{"nonexistent", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := c.Get(ctx, tt.id)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ID != tt.id {
				t.Fatalf("expected ID %s, got %s", tt.id, r.ID)
			}
			if len(r.Steps) == 0 {
				t.Fatal("recipe has no steps")
			}
			if len(r.Ingredients) == 0 {
				t.Fatal("recipe has no ingredients")
			}
			for i, s := range r.Steps {
				if s.Number != i+1 {
					t.Fatalf("step %d numbered %d", i, s.Number)
				}
			}
		})
	}
}

func TestCatalogSearch(t *testing.T) {
	c := NewCatalog(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	tests := []struct {
		query    string
		minCount int
	}{
		{"chicken", 1},
		{"pasta", 1},
		{"quick", 2},
		{"SOUP", 1},
		{"nonexistent-query-xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := c.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(results) < tt.minCount {
				t.Fatalf("expected at least %d results, got %d", tt.minCount, len(results))
			}
			if tt.minCount == 0 && len(results) != 0 {
				t.Fatalf("expected no results, got %d", len(results))
			}
		})
	}
}

func TestCatalogFetchSteps(t *testing.T) {
	c := NewCatalog(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	steps, err := c.FetchSteps(ctx, "tomato soup", []string{"tomato", "onion"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []int{0, 5, 0}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, m := range want {
		if steps[i].TimeMinutes != m {
			t.Fatalf("step %d: expected %d minutes, got %d", i+1, m, steps[i].TimeMinutes)
		}
	}

	steps[0].Description = "mutated"
	again, _ := c.FetchSteps(ctx, "Tomato Soup", nil)
	if again[0].Description == "mutated" {
		t.Fatal("fetch returned shared steps")
	}

	_, err = c.FetchSteps(ctx, "Beef Wellington", nil)
	if domain.Classify(err) != domain.KindOther || err == nil {
		t.Fatalf("expected KindOther error, got %v", err)
	}
}

func TestRecipeHelpers(t *testing.T) {
	c := NewCatalog(logger.New(logger.LevelOff, nil))
	r, err := c.Get(context.Background(), "chicken-alfredo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := r.TotalTimerMinutes(); got != 34 {
		t.Fatalf("expected 34 timer minutes, got %d", got)
	}
	if r.Ref().Signature() != domain.NewRecipeSignature(r.Name, r.Ingredients) {
		t.Fatal("ref signature mismatch")
	}
	if len(c.Refs()) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(c.Refs()))
	}
}
