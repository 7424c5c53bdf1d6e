package huggingface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// postWithRetry sends body to the model endpoint, retrying transport errors,
// 429 and 5xx replies with exponential backoff. When every attempt fails with
// a reply, the last status and body are returned so the caller can report the
// API's own error message.
func (c *Client) postWithRetry(ctx context.Context, body []byte) (int, []byte, error) {
	attempts := c.maxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	backoff := c.backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	var (
		status int
		raw    []byte
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		var retryAfter time.Duration
		status, raw, retryAfter, err = c.post(ctx, body)
		if !shouldRetry(status, err) {
			return status, raw, err
		}
		if ctx.Err() != nil {
			break
		}
		if attempt == attempts-1 {
			break
		}

		if err != nil {
			log.Printf("WARN huggingface: retry attempt %d/%d after error: %v", attempt+1, attempts, err)
		} else {
			log.Printf("WARN huggingface: retry attempt %d/%d after status %d", attempt+1, attempts, status)
		}

		delay := backoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return 0, nil, err
		}
	}
	if err != nil {
		return 0, nil, fmt.Errorf("huggingface: request failed after %d attempts: %w", attempts, err)
	}
	return status, raw, nil
}

func (c *Client) post(ctx context.Context, body []byte) (int, []byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("huggingface: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("huggingface: read response: %w", err)
	}
	return resp.StatusCode, raw, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		return true
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("huggingface: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
