package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/go-mp3"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/core/services"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const bytesPerSample = 4

// MP3Duration measures MP3 streams by decoding them.
type MP3Duration struct{}

var _ ports.DurationAnalyzer = MP3Duration{}

// Duration decodes r to the end and returns its length in milliseconds.
func (MP3Duration) Duration(r io.Reader) (int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("mp3 decode failed: %w", err)
	}
	n, err := io.Copy(io.Discard, decoder)
	if err != nil {
		return 0, fmt.Errorf("mp3 read failed: %w", err)
	}
	if n == 0 {
		return 0, errors.New("mp3 contains no samples")
	}
	rate := int64(decoder.SampleRate())
	if rate <= 0 {
		return 0, fmt.Errorf("mp3 reports sample rate %d", rate)
	}
	return int(n * 1000 / (bytesPerSample * rate)), nil
}

// Library is the slice of the song library the analyzer needs.
type Library interface {
	GetSong(ctx context.Context, id string) (domain.Song, error)
	OpenAsset(ctx context.Context, id string) (io.ReadCloser, error)
	RecordDuration(ctx context.Context, id string, durationMs int) error
	AnalyzeSongMood(ctx context.Context, id string) (services.AnalysisOutcome, error)
}

// Analyzer is the Processor run after every upload: it measures the song's
// duration and, when enabled, classifies its mood.
type Analyzer struct {
	lib          Library
	duration     ports.DurationAnalyzer
	autoClassify bool
}

var _ Processor = (*Analyzer)(nil)

// NewAnalyzer builds an Analyzer. duration may be nil to use MP3Duration.
func NewAnalyzer(lib Library, duration ports.DurationAnalyzer, autoClassify bool) *Analyzer {
	if duration == nil {
		duration = MP3Duration{}
	}
	return &Analyzer{lib: lib, duration: duration, autoClassify: autoClassify}
}

func (a *Analyzer) Process(ctx context.Context, songID string) error {
	if err := a.measure(ctx, songID); err != nil {
		// A bad duration should not keep the song from being classified.
		log.Printf("WARN worker: duration for %s: %v", songID, err)
	}

	if !a.autoClassify {
		return nil
	}
	outcome, err := a.lib.AnalyzeSongMood(ctx, songID)
	if err != nil {
		return fmt.Errorf("mood analysis: %w", err)
	}
	switch outcome.Status {
	case services.AnalysisClassified:
		log.Printf("worker: %s classified as %s (%.1f%%)", songID, outcome.Mood, outcome.Confidence*100)
	case services.AnalysisFailed:
		log.Printf("ERROR worker: mood analysis for %s: %s", songID, outcome.Message)
	}
	return nil
}

func (a *Analyzer) measure(ctx context.Context, songID string) error {
	song, err := a.lib.GetSong(ctx, songID)
	if err != nil {
		return err
	}
	if song.ContentType() != domain.DefaultMimeType {
		return nil
	}

	rc, err := a.lib.OpenAsset(ctx, songID)
	if err != nil {
		return err
	}
	defer rc.Close()

	ms, err := a.duration.Duration(rc)
	if err != nil {
		return err
	}
	return a.lib.RecordDuration(ctx, songID, ms)
}
