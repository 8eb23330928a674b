// ABOUTME: Plain-language report summaries from an OpenAI-compatible chat endpoint.
// ABOUTME: Defaults target Groq's hosted Llama model.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoAPIKey is returned when no credential is configured.
var ErrNoAPIKey = errors.New("summarizer API key not set")

// ErrEmptyText is returned when there is nothing to summarize.
var ErrEmptyText = errors.New("no text to summarize")

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	// DefaultMaxInputChars caps the document text sent in one request.
	DefaultMaxInputChars = 24000

	promptPrefix = "Summarize the following medical report in plain language for a patient:\n\n"
)

// Summarizer turns report text into a patient-facing summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config configures a Client.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxInputChars int
	HTTPClient    *http.Client
	MaxRetries    int
}

// Client calls the chat completions API.
type Client struct {
	client   openai.Client
	model    string
	maxChars int
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		maxChars: cfg.MaxInputChars,
	}, nil
}

// Prompt builds the request prompt for text, truncated to maxChars runes.
func Prompt(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = string(r[:maxChars])
		}
	}
	return promptPrefix + text
}

// Summarize returns the model's summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(Prompt(text, c.maxChars)),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
