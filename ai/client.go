// Package ai wraps the external AI service behind a narrow JSON-completion
// interface so pipeline stages can be tested against fakes.
package ai

import (
	"context"
	"errors"
	"net/http"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"

	"paperbot/config"
	"paperbot/executor"
)

// Completer issues one JSON-producing completion. Implementations must
// return the raw model output; callers decode and validate it.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Client is the Cohere-backed Completer used in production.
type Client struct {
	chat  *cohereclient.Client
	model string
}

// NewClient constructs the AI client. The API key is required; model
// defaults are handled by config.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("AI API key required (set AI_API_KEY)")
	}
	chat := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: config.AITimeout}),
	)
	return &Client{chat: chat, model: model}, nil
}

// CompleteJSON sends one chat request with a system preamble and returns
// the raw text. Service-side failures are converted into the executor's
// retryable error types.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	temperature := 0.0
	resp, err := c.chat.Chat(ctx, &cohere.ChatRequest{
		Message:     user,
		Model:       &c.model,
		Preamble:    &system,
		Temperature: &temperature,
	})
	if err != nil {
		var apiErr *coherecore.APIError
		if errors.As(err, &apiErr) {
			return "", &executor.StatusError{Code: apiErr.StatusCode, Body: apiErr.Error()}
		}
		return "", err
	}
	if resp.Text == "" {
		return "", &executor.ValidationError{Reason: "empty completion"}
	}
	return resp.Text, nil
}
