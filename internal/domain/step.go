// Package domain defines the core types and interfaces for the cooking
// session engine. All other packages depend on domain; domain depends on
// nothing.
package domain

import (
	"slices"
	"strings"
)

// CookingStep is a single generated instruction. Steps are created by a
// StepProvider and never mutated afterwards.
type CookingStep struct {
	Number          int // 1-based, as produced by the provider
	Description     string
	IngredientsUsed []string
	TimeMinutes     int // 0 means the step has no timer
}

// HasTimer reports whether the step carries a countdown.
func (s CookingStep) HasTimer() bool {
	return s.TimeMinutes > 0
}

// CloneSteps returns a deep copy of steps. Returns nil for a nil slice.
func CloneSteps(steps []CookingStep) []CookingStep {
	if steps == nil {
		return nil
	}
	out := make([]CookingStep, len(steps))
	for i, s := range steps {
		s.IngredientsUsed = slices.Clone(s.IngredientsUsed)
		out[i] = s
	}
	return out
}

// RecipeSignature identifies a cooking instance for cache lookups. Two
// sessions with the same signature share generated steps.
type RecipeSignature string

// NewRecipeSignature derives the signature from the recipe name and its
// ordered ingredient list.
func NewRecipeSignature(name string, ingredients []string) RecipeSignature {
	return RecipeSignature(name + "|" + strings.Join(ingredients, ","))
}

// String returns the raw signature.
func (s RecipeSignature) String() string { return string(s) }

// RecipeRef names a recipe to cook: the identity input of a session.
type RecipeRef struct {
	Name        string
	Ingredients []string
}

// Signature returns the cache key of the recipe.
func (r RecipeRef) Signature() RecipeSignature {
	return NewRecipeSignature(r.Name, r.Ingredients)
}
