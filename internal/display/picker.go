package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/recipe"
)

// ErrPickerCancelled is returned when the user leaves the picker without
// choosing.
var ErrPickerCancelled = errors.New("recipe picker cancelled")

const (
	recipePrefix   = "recipe:"
	favoritePrefix = "favorite:"
	customValue    = "custom"
)

// Choice is the outcome of the recipe picker. Exactly one of RecipeID,
// Favorite or Custom is set.
type Choice struct {
	RecipeID string
	Favorite domain.RecipeSignature
	Custom   *domain.RecipeRef
}

// PickRecipe asks the user what to cook: a built-in recipe, a saved
// favorite, or a recipe of their own with an ingredient list. Accessible
// mode renders plain prompts for terminals without cursor control.
func PickRecipe(recipes []recipe.Summary, favorites []*domain.Favorite, accessible bool) (Choice, error) {
	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What are we cooking?").
				Options(pickerOptions(recipes, favorites)...).
				Value(&selected),
		),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Choice{}, ErrPickerCancelled
		}
		return Choice{}, fmt.Errorf("running recipe picker: %w", err)
	}

	choice, ok := decodeChoice(selected)
	if !ok {
		return Choice{}, fmt.Errorf("unexpected picker value %q", selected)
	}
	if choice.Custom == nil {
		return choice, nil
	}

	ref, err := askCustomRecipe(accessible)
	if err != nil {
		return Choice{}, err
	}
	choice.Custom = &ref
	return choice, nil
}

func askCustomRecipe(accessible bool) (domain.RecipeRef, error) {
	var name, ingredients string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recipe name").
				Placeholder("Garlic butter pasta").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a recipe name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Ingredients").
				Description("Comma separated, leave empty to let the assistant decide.").
				Placeholder("pasta, garlic, butter").
				Value(&ingredients),
		),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return domain.RecipeRef{}, ErrPickerCancelled
		}
		return domain.RecipeRef{}, fmt.Errorf("running recipe form: %w", err)
	}
	return domain.RecipeRef{
		Name:        strings.TrimSpace(name),
		Ingredients: SplitIngredients(ingredients),
	}, nil
}

func pickerOptions(recipes []recipe.Summary, favorites []*domain.Favorite) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(recipes)+len(favorites)+1)
	for _, fav := range favorites {
		label := fmt.Sprintf("★ %s (%d steps)", fav.RecipeName, len(fav.Steps))
		opts = append(opts, huh.NewOption(label, favoritePrefix+string(fav.Signature)))
	}
	for _, r := range recipes {
		label := r.Name
		if r.Description != "" {
			label += " · " + r.Description
		}
		opts = append(opts, huh.NewOption(label, recipePrefix+r.ID))
	}
	opts = append(opts, huh.NewOption("Something else…", customValue))
	return opts
}

func decodeChoice(value string) (Choice, bool) {
	switch {
	case strings.HasPrefix(value, recipePrefix):
		return Choice{RecipeID: strings.TrimPrefix(value, recipePrefix)}, true
	case strings.HasPrefix(value, favoritePrefix):
		return Choice{Favorite: domain.RecipeSignature(strings.TrimPrefix(value, favoritePrefix))}, true
	case value == customValue:
		return Choice{Custom: &domain.RecipeRef{}}, true
	default:
		return Choice{}, false
	}
}

// SplitIngredients turns "a, b ,,c" into [a b c].
func SplitIngredients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
