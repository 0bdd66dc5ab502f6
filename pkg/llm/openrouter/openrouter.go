// Package openrouter implements llm.Client using the OpenRouter
// chat-completions API, which speaks the OpenAI wire format.
package openrouter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jxucoder/compa/pkg/llm"
)

const (
	// DefaultBaseURL is the OpenRouter API root. go-openai appends
	// "/chat/completions" to it.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the Gemma instruct model served for free on OpenRouter.
	DefaultModel = "google/gemma-2-9b-it:free"

	// Temperature is fixed for every request.
	Temperature = 0.5
)

var errMissingChoices = errors.New("openrouter: response has no choices")

// Client implements llm.Client using the OpenRouter API.
type Client struct {
	api   *openai.Client
	model string
}

// Option customizes a Client.
type Option func(*openai.ClientConfig)

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) {
		if url != "" {
			c.BaseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for outbound calls. A zero
// Timeout on hc leaves the call bounded only by the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *openai.ClientConfig) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// New creates a client for the OpenRouter API.
// Model defaults to DefaultModel if empty.
func New(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = DefaultBaseURL
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Model returns the model id sent with every request.
func (c *Client) Model() string { return c.model }

// Complete sends one system + user turn and returns the first choice's
// content, or "" when the provider returns an empty choices list. Failures
// are returned as *llm.Error.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return "", classify(err)
	}
	// A body without a choices field is an error object sent with a 200;
	// an empty choices list is a valid, empty answer.
	if resp.Choices == nil {
		return "", &llm.Error{Kind: llm.KindUnknown, Err: errMissingChoices}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps a go-openai or transport error onto the llm error taxonomy.
// Quota and context-length checks look at the provider's error message when
// one was returned; the timeout check looks at the transport error.
func classify(err error) error {
	providerMsg := err.Error()
	var code string
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		providerMsg = apiErr.Message
		if s, ok := apiErr.Code.(string); ok {
			code = s
		}
	}

	kind := llm.KindUnknown
	switch {
	case strings.Contains(providerMsg, "quota"):
		kind = llm.KindQuota
	case strings.Contains(providerMsg, "context_length_exceeded"), code == "context_length_exceeded":
		kind = llm.KindContextTooLong
	case isAbort(err), strings.Contains(err.Error(), "timeout"):
		kind = llm.KindTimeout
	}
	return &llm.Error{Kind: kind, Err: err}
}

// isAbort reports whether err is a deadline or connection-abort failure.
func isAbort(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
