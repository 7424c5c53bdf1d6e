// Package huggingface provides a mood model backed by the hosted Hugging Face
// Inference API running a text-classification emotion model.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	// DefaultModel scores text against seven emotions (joy, sadness, anger,
	// fear, disgust, surprise, neutral).
	DefaultModel = "j-hartmann/emotion-english-distilroberta-base"

	// warmupText only has to be long enough for the model to accept it.
	warmupText = "warming up the emotion classifier"
)

// Client calls the Inference API for a single model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client

	maxAttempts int
	backoff     time.Duration
}

var _ ports.MoodModel = (*Client)(nil)

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceParameters struct {
	Truncation bool `json:"truncation"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewClient builds a client. An empty token uses anonymous access, which the
// API rate limits aggressively. httpClient may be nil.
func NewClient(baseURL, model, token string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		authed.Timeout = httpClient.Timeout
		httpClient = authed
	}
	return &Client{
		baseURL:     baseURL,
		model:       model,
		httpClient:  httpClient,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// NewLoader returns a loader whose load is a warm-up request: the API keeps
// cold models unloaded, and wait_for_model blocks until this one is ready.
func NewLoader(baseURL, model, token string) ports.ModelLoader {
	return func(ctx context.Context) (ports.MoodModel, error) {
		c := NewClient(baseURL, model, token, nil)
		start := time.Now()
		if _, err := c.Classify(ctx, warmupText); err != nil {
			return nil, fmt.Errorf("huggingface: warm-up failed: %w", err)
		}
		log.Printf("huggingface: model %s ready in %s", c.model, time.Since(start).Round(time.Millisecond))
		return c, nil
	}
}

// Classify returns every label's score for text.
func (c *Client) Classify(ctx context.Context, text string) ([]domain.LabelScore, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     text,
		Parameters: inferenceParameters{Truncation: true},
		Options:    inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	status, raw, err := c.postWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.EstimatedTime > 0 {
				return nil, fmt.Errorf("huggingface: %s (estimated %.0fs)", apiErr.Error, apiErr.EstimatedTime)
			}
			return nil, fmt.Errorf("huggingface: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface: unexpected status %d", status)
	}

	scores, err := decodeScores(raw)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// decodeScores accepts both the batched [[...]] and flat [...] reply shapes.
func decodeScores(raw []byte) ([]domain.LabelScore, error) {
	var batched [][]labelScore
	if err := json.Unmarshal(raw, &batched); err == nil {
		if len(batched) == 0 {
			return []domain.LabelScore{}, nil
		}
		return toDomain(batched[0]), nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("huggingface: decode response: %w", err)
	}
	return toDomain(flat), nil
}

func toDomain(in []labelScore) []domain.LabelScore {
	out := make([]domain.LabelScore, 0, len(in))
	for _, s := range in {
		out = append(out, domain.LabelScore{Label: s.Label, Score: s.Score})
	}
	return out
}
