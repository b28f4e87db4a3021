// Package gpt provides the OpenAI chat client behind SmartCookly's AI
// features: generating cooking steps for a recipe and classifying free
// text commands the keyword parser does not understand.
package gpt

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// ErrNoChoices is returned when the API answers without a completion.
var ErrNoChoices = errors.New("gpt: empty response (no choices)")

// chatService is the slice of the OpenAI SDK the client uses.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// Client talks to the OpenAI chat-completions API.
type Client struct {
	chat        chatService
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	baseURL     string
	log         *logger.Logger
}

// NewClient creates an OpenAI chat client. The SDK's own retries are
// disabled: a failed request surfaces to the user, who decides when to
// retry.
func NewClient(apiKey string, log *logger.Logger, opts ...ClientOption) *Client {
	c := newClient(nil, log, opts...)

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(c.timeout),
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	cli := openai.NewClient(reqOpts...)
	c.chat = &cli.Chat.Completions
	return c
}

func newClient(chat chatService, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		chat:        chat,
		model:       string(openai.ChatModelGPT4oMini),
		temperature: 0.4,
		maxTokens:   2000,
		timeout:     30 * time.Second,
		log:         log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Chat sends a system prompt and a user message and returns the
// assistant's reply. Transport and API failures are returned as
// *domain.NetworkError.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(int64(c.maxTokens)),
	}

	c.log.Debug("gpt: chat completion model=%s (%d + %d chars)", c.model, len(systemPrompt), len(userPrompt))
	start := time.Now()

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		nerr := classifyError(err)
		c.log.Warn("gpt: request failed after %s: %v", time.Since(start).Round(time.Millisecond), nerr)
		return "", nerr
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	reply := resp.Choices[0].Message.Content
	c.log.Debug("gpt: reply in %s (%d chars): %s", time.Since(start).Round(time.Millisecond), len(reply), truncate(reply, 120))
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
