package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

const (
	// MinLyricsChars is the shortest trimmed input worth classifying.
	MinLyricsChars = 20
	// MaxLyricsChars bounds the text handed to the model.
	MaxLyricsChars = 2000

	defaultCacheSize = 512
)

var errNoLabels = errors.New("model returned no labels")

// MoodClassifierOption configures a MoodClassifier.
type MoodClassifierOption func(*MoodClassifier)

// WithLoadTimeout bounds how long a model load may take. Zero disables it.
func WithLoadTimeout(d time.Duration) MoodClassifierOption {
	return func(c *MoodClassifier) { c.loadTimeout = d }
}

// WithInferenceTimeout bounds a single classification. Zero disables it.
func WithInferenceTimeout(d time.Duration) MoodClassifierOption {
	return func(c *MoodClassifier) { c.inferenceTimeout = d }
}

// WithCacheSize caps the number of cached predictions. Zero disables caching.
func WithCacheSize(n int) MoodClassifierOption {
	return func(c *MoodClassifier) { c.cacheSize = n }
}

// MoodClassifier is the process-wide handle around a mood model. The model
// is loaded on the first Predict call and kept for the life of the handle.
// Construct one in main and pass it to whoever needs classification.
type MoodClassifier struct {
	load             ports.ModelLoader
	loadTimeout      time.Duration
	inferenceTimeout time.Duration
	cacheSize        int

	// loadSem holds the single load slot. initMu guards model and loads and
	// is never held across a load.
	loadSem chan struct{}
	initMu  sync.Mutex
	model   ports.MoodModel
	loads   int

	// inferMu serializes inference and guards cache.
	inferMu sync.Mutex
	cache   map[string]domain.MoodPrediction
}

var _ ports.MoodPredictor = (*MoodClassifier)(nil)

// NewMoodClassifier returns a handle that will call load on first use.
func NewMoodClassifier(load ports.ModelLoader, opts ...MoodClassifierOption) *MoodClassifier {
	c := &MoodClassifier{
		load:      load,
		cacheSize: defaultCacheSize,
		loadSem:   make(chan struct{}, 1),
		cache:     make(map[string]domain.MoodPrediction),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict classifies lyrics. Input shorter than MinLyricsChars after trimming
// is Unclassifiable and never reaches the model; input longer than
// MaxLyricsChars is cut to its first MaxLyricsChars characters. Load and
// inference faults come back as ClassificationError.
func (c *MoodClassifier) Predict(ctx context.Context, lyrics string) domain.Prediction {
	text := strings.TrimSpace(lyrics)
	n := utf8.RuneCountInString(text)
	if n < MinLyricsChars {
		return domain.Unclassifiable{
			Reason: fmt.Sprintf("lyrics too short (%d of %d characters)", n, MinLyricsChars),
		}
	}
	if n > MaxLyricsChars {
		text = truncateRunes(text, MaxLyricsChars)
		log.Printf("mood classifier: truncated lyrics from %d to %d chars", n, MaxLyricsChars)
	}

	model, err := c.ensureModel(ctx)
	if err != nil {
		log.Printf("ERROR mood classifier: failed to load model: %v", err)
		return domain.ClassificationError{Message: err.Error()}
	}

	c.inferMu.Lock()
	defer c.inferMu.Unlock()

	if cached, ok := c.cache[text]; ok {
		return cached
	}

	scores, err := c.classify(ctx, model, text)
	if err != nil {
		log.Printf("ERROR mood classifier: prediction failed: %v", err)
		return domain.ClassificationError{Message: err.Error()}
	}
	top, ok := domain.Dominant(scores)
	if !ok {
		log.Printf("ERROR mood classifier: prediction failed: %v", errNoLabels)
		return domain.ClassificationError{Message: errNoLabels.Error()}
	}

	label := strings.ToLower(strings.TrimSpace(top.Label))
	pred := domain.MoodPrediction{
		Mood:        domain.MoodForLabel(label),
		Confidence:  clampUnit(top.Score),
		NativeLabel: label,
	}
	c.remember(text, pred)

	log.Printf("mood classifier: %s (%.2f%% confidence) [raw: %s]", pred.Mood, pred.Confidence*100, label)
	return pred
}

// Loaded reports whether the model has been constructed.
func (c *MoodClassifier) Loaded() bool {
	return c.current() != nil
}

// Loads returns how many times the model has been constructed.
func (c *MoodClassifier) Loads() int {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.loads
}

// ensureModel returns the loaded model, loading it on first use. Only one
// load runs at a time; callers arriving during a load wait for it and then
// observe the same instance, unless their own ctx ends first. A failed load
// leaves the handle empty so a later call can try again.
func (c *MoodClassifier) ensureModel(ctx context.Context) (ports.MoodModel, error) {
	if model := c.current(); model != nil {
		return model, nil
	}
	if c.load == nil {
		return nil, errors.New("no model loader configured")
	}

	select {
	case c.loadSem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for model load: %w", ctx.Err())
	}
	defer func() { <-c.loadSem }()

	if model := c.current(); model != nil {
		return model, nil
	}

	// A load is shared by every waiting caller, so one request going away
	// must not abort it.
	loadCtx := context.WithoutCancel(ctx)
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
		defer cancel()
	}

	log.Println("mood classifier: loading model (first use)...")
	start := time.Now()
	model, err := c.safeLoad(loadCtx)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, errors.New("model loader returned no model")
	}

	c.initMu.Lock()
	c.model = model
	c.loads++
	c.initMu.Unlock()

	log.Printf("mood classifier: model loaded in %s", time.Since(start).Round(time.Millisecond))
	return model, nil
}

func (c *MoodClassifier) current() ports.MoodModel {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.model
}

func (c *MoodClassifier) safeLoad(ctx context.Context) (model ports.MoodModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			model, err = nil, fmt.Errorf("model load panicked: %v", r)
		}
	}()
	return c.load(ctx)
}

func (c *MoodClassifier) classify(ctx context.Context, model ports.MoodModel, text string) (scores []domain.LabelScore, err error) {
	if c.inferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.inferenceTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			scores, err = nil, fmt.Errorf("model inference panicked: %v", r)
		}
	}()
	return model.Classify(ctx, text)
}

// remember must be called with inferMu held.
func (c *MoodClassifier) remember(text string, pred domain.MoodPrediction) {
	if c.cacheSize <= 0 {
		return
	}
	if len(c.cache) >= c.cacheSize {
		c.cache = make(map[string]domain.MoodPrediction)
	}
	c.cache[text] = pred
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
