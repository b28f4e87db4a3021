package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.StepProvider = (*StepGenerator)(nil)

// errNoJSONArray is returned when the reply carries no JSON array.
var errNoJSONArray = errors.New("no JSON array found in response")

// stepPayload is one element of the JSON array the model returns.
type stepPayload struct {
	StepNumber      int      `json:"step_number"`
	Description     string   `json:"description"`
	IngredientsUsed []string `json:"ingredients_used"`
	TimeMinutes     int      `json:"time_minutes"`
}

// StepGenerator produces cooking steps with an LLM.
type StepGenerator struct {
	client *Client
	log    *logger.Logger
}

// NewStepGenerator creates a step provider backed by client.
func NewStepGenerator(client *Client, log *logger.Logger) *StepGenerator {
	return &StepGenerator{client: client, log: log}
}

// FetchSteps asks the model for the steps of recipeName. Every failure,
// including a reply that cannot be parsed, is a *domain.NetworkError.
func (g *StepGenerator) FetchSteps(ctx context.Context, recipeName string, ingredients []string) ([]domain.CookingStep, error) {
	raw, err := g.client.Chat(ctx, PromptSteps, buildStepsRequest(recipeName, ingredients))
	if err != nil {
		return nil, classifyError(err)
	}

	steps, err := parseSteps(raw)
	if err != nil {
		g.log.Error("gpt: failed to parse steps JSON: %v\nraw: %s", err, truncate(raw, 500))
		return nil, domain.NewNetworkError(domain.KindOther, fmt.Errorf("parsing steps: %w", err))
	}

	g.log.Debug("gpt: %d steps for %q", len(steps), recipeName)
	return steps, nil
}

func buildStepsRequest(recipeName string, ingredients []string) string {
	list := "None specified"
	if len(ingredients) > 0 {
		list = strings.Join(ingredients, ", ")
	}
	return fmt.Sprintf("Recipe: %s\nIngredients: %s", recipeName, list)
}

// parseSteps extracts the JSON array from a model reply. Code fences and
// surrounding prose are ignored. Entries without a description are
// dropped; steps are renumbered when the model's numbering is missing.
func parseSteps(raw string) ([]domain.CookingStep, error) {
	raw = stripCodeFence(raw)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end < start {
		return nil, errNoJSONArray
	}

	var items []stepPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, err
	}

	steps := make([]domain.CookingStep, 0, len(items))
	for _, it := range items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}
		number := it.StepNumber
		if number <= 0 {
			number = len(steps) + 1
		}
		minutes := it.TimeMinutes
		if minutes < 0 {
			minutes = 0
		}
		used := it.IngredientsUsed
		if used == nil {
			used = []string{}
		}
		steps = append(steps, domain.CookingStep{
			Number:          number,
			Description:     desc,
			IngredientsUsed: used,
			TimeMinutes:     minutes,
		})
	}
	return steps, nil
}

// stripCodeFence removes ```json ... ``` wrappers that LLMs love to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence line.
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		// Remove closing fence.
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
