// Package openai provides a mood model backed by any OpenAI-compatible chat
// completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/ewilliams-labs/encore/internal/adapters/moodprompt"
	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

const defaultModel = "gpt-4o-mini"

// Client scores lyrics with a chat model in JSON mode.
type Client struct {
	api   *goopenai.Client
	model string
}

var _ ports.MoodModel = (*Client)(nil)

// NewClient builds a client. baseURL may point at a compatible server; empty
// means the public API.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}
}

// NewLoader returns a loader that confirms the model exists and the key is
// accepted before the client is used.
func NewLoader(apiKey, baseURL, model string) ports.ModelLoader {
	return func(ctx context.Context) (ports.MoodModel, error) {
		c := NewClient(apiKey, baseURL, model)
		if _, err := c.api.GetModel(ctx, c.model); err != nil {
			var apiErr *goopenai.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("openai: model %q not available", c.model)
			}
			return nil, fmt.Errorf("openai: check model: %w", err)
		}
		return c, nil
	}
}

func (c *Client) Classify(ctx context.Context, text string) ([]domain.LabelScore, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: moodprompt.System()},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: no choices returned")
	}

	scores, err := moodprompt.ParseScores(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return scores, nil
}
