package ports

import (
	"context"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// MoodModel is a loaded text-classification model that scores text against
// its native label vocabulary.
type MoodModel interface {
	Classify(ctx context.Context, text string) ([]domain.LabelScore, error)
}

// ModelLoader constructs a MoodModel. Loading is expensive and is expected to
// run at most once per process.
type ModelLoader func(ctx context.Context) (MoodModel, error)

// MoodPredictor turns lyrics into a mood prediction.
type MoodPredictor interface {
	Predict(ctx context.Context, lyrics string) domain.Prediction
}
