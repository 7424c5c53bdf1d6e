package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		attempts     int
		wantAttempts int32
		wantErr      string
	}{
		{
			name:         "recovers after cold start",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK},
			attempts:     3,
			wantAttempts: 3,
		},
		{
			name:         "gives up on persistent rate limit",
			statuses:     []int{http.StatusTooManyRequests},
			attempts:     2,
			wantAttempts: 2,
			wantErr:      "rate limited",
		},
		{
			name:         "client errors are not retried",
			statuses:     []int{http.StatusBadRequest},
			attempts:     3,
			wantAttempts: 1,
			wantErr:      "bad input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&calls, 1))
				status := tt.statuses[len(tt.statuses)-1]
				if n <= len(tt.statuses) {
					status = tt.statuses[n-1]
				}
				w.WriteHeader(status)
				switch status {
				case http.StatusOK:
					_, _ = w.Write([]byte(`[[{"label":"joy","score":1}]]`))
				case http.StatusTooManyRequests:
					_, _ = w.Write([]byte(`{"error":"rate limited"}`))
				case http.StatusBadRequest:
					_, _ = w.Write([]byte(`{"error":"bad input"}`))
				default:
					_, _ = w.Write([]byte(`{"error":"loading"}`))
				}
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "", nil)
			c.maxAttempts = tt.attempts
			c.backoff = time.Millisecond

			scores, err := c.Classify(context.Background(), "some lyrics")

			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&calls))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "joy", scores[0].Label)
		})
	}
}

func TestClient_RetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", nil)
	c.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Classify(ctx, "some lyrics")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))
	assert.Zero(t, parseRetryAfter("-5"))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	assert.Greater(t, got, 50*time.Second)
}
