package gpt

import (
	"context"
	"encoding/json"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*Classifier)(nil)

// classifyResponse is the JSON the model returns for command classification.
type classifyResponse struct {
	Command string `json:"command"`
}

// Classifier sends free text to the model and maps the reply onto a
// session command. It is the fallback behind the keyword parser.
type Classifier struct {
	client *Client
	log    *logger.Logger
}

// NewClassifier creates a command classifier backed by client.
func NewClassifier(client *Client, log *logger.Logger) *Classifier {
	return &Classifier{client: client, log: log}
}

// Parse classifies input. An unparseable reply yields CmdUnknown rather
// than an error; only request failures are returned as errors.
func (c *Classifier) Parse(ctx context.Context, input string) (*domain.Command, error) {
	raw, err := c.client.Chat(ctx, PromptClassify, input)
	if err != nil {
		return nil, err
	}

	raw = stripCodeFence(raw)

	var resp classifyResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		c.log.Error("gpt: failed to parse classify JSON: %v\nraw: %s", err, raw)
		return &domain.Command{Type: domain.CmdUnknown, Raw: input}, nil
	}

	cmd := domain.CommandFromString(resp.Command)
	c.log.Debug("gpt: classified %q -> %s", input, cmd)
	return &domain.Command{Type: cmd, Raw: input}, nil
}
