package storage

import (
	"sync"
	"testing"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

func tomatoSoup() []domain.CookingStep {
	return []domain.CookingStep{
		{Number: 1, Description: "Chop the tomatoes", IngredientsUsed: []string{"tomato"}},
		{Number: 2, Description: "Simmer", IngredientsUsed: []string{"tomato", "water"}, TimeMinutes: 5},
		{Number: 3, Description: "Blend and serve"},
	}
}

func TestMemoryStepCacheGetPut(t *testing.T) {
	cache := NewMemoryStepCache(logger.Discard())
	sig := domain.NewRecipeSignature("Tomato Soup", []string{"tomato", "water"})

	if _, ok := cache.Get(sig); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put(sig, tomatoSoup())
	got, ok := cache.Get(sig)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got))
	}
	if got[1].TimeMinutes != 5 {
		t.Fatalf("expected 5 minutes on step 2, got %d", got[1].TimeMinutes)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestMemoryStepCacheIsolation(t *testing.T) {
	cache := NewMemoryStepCache(logger.Discard())
	sig := domain.NewRecipeSignature("Tomato Soup", nil)

	in := tomatoSoup()
	cache.Put(sig, in)
	in[0].Description = "mutated after put"
	in[1].IngredientsUsed[0] = "mutated"

	out, _ := cache.Get(sig)
	if out[0].Description != "Chop the tomatoes" {
		t.Fatalf("put did not copy: %q", out[0].Description)
	}
	if out[1].IngredientsUsed[0] != "tomato" {
		t.Fatalf("put did not deep copy ingredients: %q", out[1].IngredientsUsed[0])
	}

	out[2].Description = "mutated after get"
	again, _ := cache.Get(sig)
	if again[2].Description != "Blend and serve" {
		t.Fatalf("get did not copy: %q", again[2].Description)
	}
}

func TestMemoryStepCacheEmptyEntry(t *testing.T) {
	cache := NewMemoryStepCache(logger.Discard())
	sig := domain.NewRecipeSignature("Water", nil)

	cache.Put(sig, nil)
	got, ok := cache.Get(sig)
	if !ok {
		t.Fatal("expected empty entry to be a hit")
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestMemoryStepCacheClear(t *testing.T) {
	cache := NewMemoryStepCache(logger.Discard())
	cache.Put("a|", tomatoSoup())
	cache.Put("b|", tomatoSoup())

	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
	if _, ok := cache.Get("a|"); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestMemoryStepCacheConcurrent(t *testing.T) {
	cache := NewMemoryStepCache(logger.Discard())
	sig := domain.NewRecipeSignature("Tomato Soup", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.Put(sig, tomatoSoup())
		}()
		go func() {
			defer wg.Done()
			if steps, ok := cache.Get(sig); ok && len(steps) != 3 {
				t.Errorf("reader saw partial list of %d steps", len(steps))
			}
		}()
	}
	wg.Wait()
}
