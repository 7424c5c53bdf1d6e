package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// AnalysisStatus summarizes what happened to a mood analysis request.
type AnalysisStatus string

const (
	AnalysisClassified         AnalysisStatus = "classified"
	AnalysisInsufficientLyrics AnalysisStatus = "insufficient_lyrics"
	AnalysisFailed             AnalysisStatus = "failed"
)

// ErrClassifierUnavailable is returned when no mood predictor is configured.
var ErrClassifierUnavailable = errors.New("service: mood classifier not configured")

// AnalysisOutcome is reported back to the user after a mood analysis.
type AnalysisOutcome struct {
	SongID     string         `json:"song_id"`
	Status     AnalysisStatus `json:"status"`
	Mood       domain.Mood    `json:"mood,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Message    string         `json:"message"`
}

// AnalyzeSongMood classifies a song's lyrics and stores the mood on success.
// Songs without enough lyrics are reported without calling the model, and a
// classification error leaves the stored mood untouched.
func (l *Library) AnalyzeSongMood(ctx context.Context, id string) (AnalysisOutcome, error) {
	if l.moods == nil {
		return AnalysisOutcome{}, ErrClassifierUnavailable
	}
	song, err := l.GetSong(ctx, id)
	if err != nil {
		return AnalysisOutcome{}, err
	}

	out := AnalysisOutcome{SongID: song.ID}
	if utf8.RuneCountInString(strings.TrimSpace(song.Lyrics)) < MinLyricsChars {
		out.Status = AnalysisInsufficientLyrics
		out.Message = insufficientLyricsMessage
		return out, nil
	}

	switch p := l.moods.Predict(ctx, song.Lyrics).(type) {
	case domain.MoodPrediction:
		if err := l.songs.UpdateSongMood(ctx, song.ID, p.Mood, p.Confidence); err != nil {
			return AnalysisOutcome{}, fmt.Errorf("service: failed to save mood: %w", err)
		}
		out.Status = AnalysisClassified
		out.Mood = p.Mood
		out.Confidence = p.Confidence
		out.Message = fmt.Sprintf("Classified as %s (%.1f%% confidence).", p.Mood.DisplayName(), p.Confidence*100)
	case domain.Unclassifiable:
		out.Status = AnalysisInsufficientLyrics
		out.Message = insufficientLyricsMessage
	case domain.ClassificationError:
		out.Status = AnalysisFailed
		out.Message = "Mood analysis failed: " + p.Message
	default:
		return AnalysisOutcome{}, fmt.Errorf("service: unexpected prediction %T", p)
	}
	return out, nil
}

var insufficientLyricsMessage = fmt.Sprintf("The song needs lyrics of at least %d characters to analyze its mood.", MinLyricsChars)
