package ollama

import (
	"context"
	"os"
	"testing"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// TestClient_Classify_Integration tests against a live Ollama instance.
// This test is skipped unless RUN_AI_TESTS=true is set.
func TestClient_Classify_Integration(t *testing.T) {
	if os.Getenv("RUN_AI_TESTS") != "true" {
		t.Skip("Skipping AI-dependent test (set RUN_AI_TESTS=true to enable)")
	}

	ollamaHost := os.Getenv("OLLAMA_HOST")
	if ollamaHost == "" {
		ollamaHost = defaultBaseURL
	}

	model, err := NewLoader(ollamaHost, os.Getenv("OLLAMA_MODEL"))(context.Background())
	if err != nil {
		t.Fatalf("load model: %v", err)
	}

	tests := []struct {
		name     string
		lyrics   string
		wantMood domain.Mood
	}{
		{
			name:     "Joyful lyrics",
			lyrics:   "Walking on sunshine, and don't it feel good! I'm so happy I could burst.",
			wantMood: domain.MoodHappy,
		},
		{
			name:     "Grieving lyrics",
			lyrics:   "The rain won't stop since you left, I cry alone in this empty room every night",
			wantMood: domain.MoodSad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := model.Classify(context.Background(), tt.lyrics)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			top, ok := domain.Dominant(scores)
			if !ok {
				t.Fatal("expected at least one label")
			}
			// Live models drift; log rather than fail on the exact mood.
			if got := domain.MoodForLabel(top.Label); got != tt.wantMood {
				t.Logf("expected %s, got %s from %+v", tt.wantMood, got, top)
			}
		})
	}
}
