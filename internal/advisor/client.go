// Package advisor asks an OpenAI-compatible chat-completion endpoint for a
// written savings plan and caches the answers.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL      = "https://api.groq.com/openai/v1"
	defaultModel        = "llama-3.3-70b-versatile"
	defaultSystemPrompt = "You are a helpful AI financial advisor."
	defaultTimeout      = 60 * time.Second
)

var (
	// ErrRateLimited indicates the provider returned HTTP 429.
	ErrRateLimited = errors.New("advisor: rate limited")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("advisor: unauthorized (API key missing or invalid)")
	// ErrEmptyResponse indicates a 200 response with no usable content.
	ErrEmptyResponse = errors.New("advisor: empty response")
)

// StatusError is any other non-success response from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("advisor: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("advisor: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Generator produces plan text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Options configures a Client. Zero values fall back to the Groq defaults.
type Options struct {
	BaseURL      string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client talks to the chat-completion endpoint. It performs exactly one
// request per Generate call; failures are returned, never retried.
type Client struct {
	api          *openai.Client
	model        string
	systemPrompt string
	timeout      time.Duration
}

// NewClient creates a client for apiKey. Returns nil if the key is empty.
func NewClient(apiKey string, opts Options) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &Client{
		api:          openai.NewClientWithConfig(cfg),
		model:        opts.Model,
		systemPrompt: opts.SystemPrompt,
		timeout:      opts.Timeout,
	}
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as the user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// classify maps go-openai errors onto the advisor taxonomy.
func classify(err error) error {
	code, body := 0, ""

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code, body = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
	default:
		return fmt.Errorf("advisor: request failed: %w", err)
	}

	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return &StatusError{StatusCode: code, Body: body}
}

// UserMessage turns an advisor error into the text shown to the user.
func UserMessage(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please try again later or check your Groq API quota."
	case errors.Is(err, ErrUnauthorized):
		return "Error: the API key was rejected. Check GROQ_API_KEY."
	case errors.As(err, &se):
		if se.Body != "" {
			return fmt.Sprintf("Error: %d\n%s", se.StatusCode, se.Body)
		}
		return fmt.Sprintf("Error: %d", se.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: the advisor did not answer in time."
	default:
		return "Error: " + err.Error()
	}
}
