package domain

import "time"

// Favorite is a recipe saved together with the steps generated for it,
// so that reopening it never has to reach the step provider.
type Favorite struct {
	Signature   RecipeSignature
	RecipeName  string
	Ingredients []string
	Steps       []CookingStep
	SavedAt     time.Time
}
