package domain

import "context"

// StepProvider generates ordered cooking instructions for a recipe.
// Failures should be returned as *NetworkError so they can be classified.
type StepProvider interface {
	FetchSteps(ctx context.Context, recipeName string, ingredients []string) ([]CookingStep, error)
}

// StepCache memoizes generated steps by recipe signature. Implementations
// must be safe for concurrent use and must not hand out slices that a
// later Put can modify.
type StepCache interface {
	Get(sig RecipeSignature) ([]CookingStep, bool)
	Put(sig RecipeSignature, steps []CookingStep)
	Clear()
}

// FavoritesStore persists favorite recipes with their steps.
// Implementations can be in-memory or SQLite.
type FavoritesStore interface {
	Save(ctx context.Context, fav *Favorite) error
	Get(ctx context.Context, sig RecipeSignature) (*Favorite, error)
	List(ctx context.Context) ([]*Favorite, error)
	Delete(ctx context.Context, sig RecipeSignature) error
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal, play a sound, or both.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// CommandParser converts raw user input into a session command.
type CommandParser interface {
	Parse(ctx context.Context, input string) (*Command, error)
}
