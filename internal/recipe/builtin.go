package recipe

import "github.com/ahmedmed7t/smartcookly/internal/domain"

func tomatoSoup() *Recipe {
	return &Recipe{
		ID:          "tomato-soup",
		Name:        "Tomato Soup",
		Description: "Three steps, one pot, one blender. The weeknight soup that tastes like you tried.",
		Tags:        []string{"soup", "vegetarian", "quick"},
		Ingredients: []string{"tomato", "onion"},
		Steps: []domain.CookingStep{
			{
				Number:          1,
				Description:     "Roughly chop the tomatoes and the onion. No need to be neat, it all gets blended.",
				IngredientsUsed: []string{"tomato", "onion"},
			},
			{
				Number:          2,
				Description:     "Put everything in a pot with a cup of water and a pinch of salt. Simmer with the lid on until the onion is soft.",
				IngredientsUsed: []string{"tomato", "onion"},
				TimeMinutes:     5,
			},
			{
				Number:          3,
				Description:     "Blend until smooth, season with pepper and serve hot.",
				IngredientsUsed: []string{},
			},
		},
	}
}

func chickenAlfredo() *Recipe {
	return &Recipe{
		ID:          "chicken-alfredo",
		Name:        "Chicken Alfredo",
		Description: "Creamy spaghetti alfredo with pan-seared chicken. Rich, indulgent, and not from a jar.",
		Tags:        []string{"italian", "pasta", "chicken", "comfort"},
		Ingredients: []string{"spaghetti", "chicken breast", "creme fraiche", "gruyere cheese", "margarine", "garlic", "olive oil"},
		Steps: []domain.CookingStep{
			{
				Number:      1,
				Description: "Bring a large pot of salted water to a boil for the pasta. It should taste like the sea.",
				TimeMinutes: 8,
			},
			{
				Number:          2,
				Description:     "While the water heats, season the chicken breasts with salt and pepper and pound them to an even thickness.",
				IngredientsUsed: []string{"chicken breast"},
			},
			{
				Number:          3,
				Description:     "Heat olive oil in a skillet over medium-high heat. Sear the chicken about 6 minutes per side until golden and cooked through, then let it rest.",
				IngredientsUsed: []string{"olive oil", "chicken breast"},
				TimeMinutes:     12,
			},
			{
				Number:          4,
				Description:     "Drop the spaghetti into the boiling water and cook until al dente. Reserve a cup of pasta water before draining.",
				IngredientsUsed: []string{"spaghetti"},
				TimeMinutes:     10,
			},
			{
				Number:          5,
				Description:     "In the same skillet, melt the margarine over medium heat and cook the minced garlic until fragrant. Do not burn it.",
				IngredientsUsed: []string{"margarine", "garlic"},
				TimeMinutes:     1,
			},
			{
				Number:          6,
				Description:     "Stir in the creme fraiche and let it reduce at a gentle simmer until it coats the back of a spoon.",
				IngredientsUsed: []string{"creme fraiche"},
				TimeMinutes:     3,
			},
			{
				Number:          7,
				Description:     "Take the pan off the heat and stir in the gruyere until smooth. Loosen with pasta water if it's too thick.",
				IngredientsUsed: []string{"gruyere cheese"},
			},
			{
				Number:          8,
				Description:     "Slice the chicken, toss the pasta in the sauce and serve with the chicken on top. Alfredo does not reheat well.",
				IngredientsUsed: []string{"spaghetti", "chicken breast"},
			},
		},
	}
}

func vegetableStirFry() *Recipe {
	return &Recipe{
		ID:          "vegetable-stir-fry",
		Name:        "Vegetable Stir Fry",
		Description: "Fast, crunchy, and customizable. The key is a screaming hot pan and not overcrowding it.",
		Tags:        []string{"asian", "vegetables", "quick", "vegan", "healthy"},
		Ingredients: []string{"bell pepper", "broccoli florets", "carrot", "snap peas", "garlic", "fresh ginger", "soy sauce", "sesame oil", "vegetable oil"},
		Steps: []domain.CookingStep{
			{
				Number:      1,
				Description: "If serving with rice, start the rice first. Get that going before you touch anything else.",
			},
			{
				Number:          2,
				Description:     "Prep all vegetables: slice the pepper, cut the broccoli small, julienne the carrot, trim the peas. Mince the garlic and grate the ginger.",
				IngredientsUsed: []string{"bell pepper", "broccoli florets", "carrot", "snap peas", "garlic", "fresh ginger"},
			},
			{
				Number:          3,
				Description:     "Mix the sauce: soy sauce and sesame oil with 2 tablespoons of water. Set aside.",
				IngredientsUsed: []string{"soy sauce", "sesame oil"},
			},
			{
				Number:          4,
				Description:     "Heat your wok on HIGH until it just starts to smoke. Add the vegetable oil and swirl to coat.",
				IngredientsUsed: []string{"vegetable oil"},
			},
			{
				Number:          5,
				Description:     "Add broccoli and carrot first, then the pepper and peas. Let things char instead of stirring constantly.",
				IngredientsUsed: []string{"broccoli florets", "carrot", "bell pepper", "snap peas"},
				TimeMinutes:     4,
			},
			{
				Number:          6,
				Description:     "Push the vegetables aside, fry the garlic and ginger in the middle until fragrant, then toss everything together.",
				IngredientsUsed: []string{"garlic", "fresh ginger"},
			},
			{
				Number:      7,
				Description: "Pour the sauce over everything and toss until glossy.",
			},
			{
				Number:      8,
				Description: "Serve immediately over rice. This does not get better sitting around.",
			},
		},
	}
}
