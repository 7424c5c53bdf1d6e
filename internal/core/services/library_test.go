package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

type libraryFixture struct {
	lib       *Library
	songs     *mockSongRepo
	playlists *mockPlaylistRepo
	comments  *mockCommentRepo
	assets    *memAssets
	prober    *mockProber
	moods     *mockPredictor
	queue     *recordingQueue
}

func newLibraryFixture(songs ...domain.Song) *libraryFixture {
	f := &libraryFixture{
		songs:     newMockSongRepo(songs...),
		playlists: newMockPlaylistRepo(),
		comments:  &mockCommentRepo{},
		assets:    newMemAssets(),
		prober:    &mockProber{},
		moods:     &mockPredictor{},
		queue:     &recordingQueue{},
	}
	f.lib = NewLibrary(LibraryDeps{
		Songs:     f.songs,
		Playlists: f.playlists,
		Comments:  f.comments,
		Assets:    f.assets,
		Prober:    f.prober,
		Moods:     f.moods,
		Queue:     f.queue,
	})
	f.lib.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return f
}

func TestLibrary_UploadSong(t *testing.T) {
	audio := []byte("ID3\x04fake mpeg payload")

	tests := []struct {
		name       string
		input      UploadInput
		meta       domain.AudioMetadata
		wantTitle  string
		wantArtist string
		wantAlbum  string
		wantLyrics string
		wantMime   string
		wantExt    string
	}{
		{
			name: "user metadata wins over tags",
			input: UploadInput{
				Title: "Typed Title", Artist: "Typed Artist", Filename: "track.mp3",
			},
			meta:       domain.AudioMetadata{Title: "Tag Title", Artist: "Tag Artist", Album: "Tag Album", MimeType: "audio/mpeg", Extension: "mp3"},
			wantTitle:  "Typed Title",
			wantArtist: "Typed Artist",
			wantAlbum:  "Tag Album",
			wantMime:   "audio/mpeg",
			wantExt:    ".mp3",
		},
		{
			name:       "tags fill blanks",
			input:      UploadInput{Title: "  ", Filename: "whatever.bin"},
			meta:       domain.AudioMetadata{Title: "Tag Title", Artist: "Tag Artist", Lyrics: "la la la", MimeType: "audio/flac", Extension: "flac"},
			wantTitle:  "Tag Title",
			wantArtist: "Tag Artist",
			wantLyrics: "la la la",
			wantMime:   "audio/flac",
			wantExt:    ".flac",
		},
		{
			name:       "filename and defaults as last resort",
			input:      UploadInput{Filename: "/tmp/Blue Monday.MP3"},
			wantTitle:  "Blue Monday",
			wantArtist: unknownArtist,
			wantMime:   domain.DefaultMimeType,
			wantExt:    ".mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLibraryFixture()
			f.prober.meta = tt.meta
			in := tt.input
			in.File = bytes.NewReader(audio)
			in.Size = int64(len(audio))

			song, err := f.lib.UploadSong(context.Background(), in)
			require.NoError(t, err)

			assert.NotEmpty(t, song.ID)
			assert.Equal(t, tt.wantTitle, song.Title)
			assert.Equal(t, tt.wantArtist, song.Artist)
			assert.Equal(t, tt.wantAlbum, song.Album)
			assert.Equal(t, tt.wantLyrics, song.Lyrics)
			assert.Equal(t, tt.wantMime, song.MimeType)
			assert.Equal(t, song.ID+tt.wantExt, song.AssetKey)
			assert.Equal(t, int64(len(audio)), song.Size)
			assert.Equal(t, f.lib.now(), song.UploadedAt)

			assert.Equal(t, audio, f.assets.files[song.AssetKey], "stored asset must be the full upload")
			stored, err := f.songs.GetSong(context.Background(), song.ID)
			require.NoError(t, err)
			assert.Equal(t, song, stored)
			assert.Equal(t, []string{song.ID}, f.queue.ids)
		})
	}
}

func TestLibrary_UploadSong_Failures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.lib.UploadSong(context.Background(), UploadInput{Title: "x"})
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("probe rejects file", func(t *testing.T) {
		f := newLibraryFixture()
		f.prober.err = errors.New("not audio")
		_, err := f.lib.UploadSong(context.Background(), UploadInput{File: strings.NewReader("hello"), Size: 5})
		require.Error(t, err)
		assert.Empty(t, f.assets.files)
		assert.Empty(t, f.queue.ids)
	})

	t.Run("asset store failure", func(t *testing.T) {
		f := newLibraryFixture()
		f.assets.putErr = errors.New("disk full")
		_, err := f.lib.UploadSong(context.Background(), UploadInput{Title: "x", File: strings.NewReader("hello"), Size: 5})
		require.Error(t, err)
		assert.Empty(t, f.songs.songs)
	})

	t.Run("repository failure removes orphaned asset", func(t *testing.T) {
		f := newLibraryFixture()
		f.songs.saveErr = errors.New("db locked")
		_, err := f.lib.UploadSong(context.Background(), UploadInput{Title: "x", File: strings.NewReader("hello"), Size: 5})
		require.Error(t, err)
		assert.Empty(t, f.assets.files)
		assert.Len(t, f.assets.deleted, 1)
		assert.Empty(t, f.queue.ids)
	})
}

func TestLibrary_DeleteSong(t *testing.T) {
	f := newLibraryFixture(domain.Song{ID: "s1", AssetKey: "s1.mp3"})
	f.assets.files["s1.mp3"] = []byte("abc")

	require.NoError(t, f.lib.DeleteSong(context.Background(), "s1"))
	assert.Empty(t, f.songs.songs)
	assert.Equal(t, []string{"s1.mp3"}, f.assets.deleted)

	err := f.lib.DeleteSong(context.Background(), "s1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLibrary_DeleteSong_MissingAssetIsIgnored(t *testing.T) {
	f := newLibraryFixture(domain.Song{ID: "s1", AssetKey: "gone.mp3"})
	assert.NoError(t, f.lib.DeleteSong(context.Background(), "s1"))
	assert.Empty(t, f.songs.songs)
}

func TestLibrary_OpenAssetAndDuration(t *testing.T) {
	f := newLibraryFixture(domain.Song{ID: "s1", AssetKey: "s1.mp3"})
	f.assets.files["s1.mp3"] = []byte("whole file")

	rc, err := f.lib.OpenAsset(context.Background(), "s1")
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "whole file", buf.String())

	require.NoError(t, f.lib.RecordDuration(context.Background(), "s1", 215000))
	assert.Equal(t, 215000, f.songs.songs["s1"].DurationMs)
}

func TestLibrary_AnalyzeSongMood(t *testing.T) {
	longLyrics := "joy surprise pride, we were dancing until the sun came up"

	tests := []struct {
		name           string
		lyrics         string
		prediction     domain.Prediction
		wantStatus     AnalysisStatus
		wantMessage    string
		wantMood       domain.Mood
		wantModelCalls int
		wantStored     bool
	}{
		{
			name:           "classified",
			lyrics:         longLyrics,
			prediction:     domain.MoodPrediction{Mood: domain.MoodHappy, Confidence: 0.91},
			wantStatus:     AnalysisClassified,
			wantMessage:    "Classified as Happy (91.0% confidence).",
			wantMood:       domain.MoodHappy,
			wantModelCalls: 1,
			wantStored:     true,
		},
		{
			name:           "short lyrics never reach the predictor",
			lyrics:         "  la la  ",
			wantStatus:     AnalysisInsufficientLyrics,
			wantMessage:    insufficientLyricsMessage,
			wantModelCalls: 0,
		},
		{
			name:           "predictor says unclassifiable",
			lyrics:         longLyrics,
			prediction:     domain.Unclassifiable{Reason: "too short"},
			wantStatus:     AnalysisInsufficientLyrics,
			wantMessage:    insufficientLyricsMessage,
			wantModelCalls: 1,
		},
		{
			name:           "classification error",
			lyrics:         longLyrics,
			prediction:     domain.ClassificationError{Message: "model exploded"},
			wantStatus:     AnalysisFailed,
			wantMessage:    "Mood analysis failed: model exploded",
			wantModelCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLibraryFixture(domain.Song{ID: "s1", Lyrics: tt.lyrics})
			f.moods.prediction = tt.prediction

			out, err := f.lib.AnalyzeSongMood(context.Background(), "s1")
			require.NoError(t, err)

			assert.Equal(t, "s1", out.SongID)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantMessage, out.Message)
			assert.Equal(t, tt.wantMood, out.Mood)
			assert.Equal(t, tt.wantModelCalls, f.moods.calls)

			stored := f.songs.songs["s1"]
			if tt.wantStored {
				assert.Equal(t, tt.wantMood, stored.Mood)
				assert.Equal(t, 1, f.songs.moodSets)
			} else {
				assert.Empty(t, stored.Mood)
				assert.Equal(t, 0, f.songs.moodSets)
			}
		})
	}
}

func TestLibrary_AnalyzeSongMood_Errors(t *testing.T) {
	t.Run("no predictor", func(t *testing.T) {
		lib := NewLibrary(LibraryDeps{Songs: newMockSongRepo()})
		_, err := lib.AnalyzeSongMood(context.Background(), "s1")
		assert.True(t, errors.Is(err, ErrClassifierUnavailable))
	})

	t.Run("unknown song", func(t *testing.T) {
		f := newLibraryFixture()
		_, err := f.lib.AnalyzeSongMood(context.Background(), "nope")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("persist failure", func(t *testing.T) {
		f := newLibraryFixture(domain.Song{ID: "s1", Lyrics: strings.Repeat("words ", 10)})
		f.moods.prediction = domain.MoodPrediction{Mood: domain.MoodSad, Confidence: 0.5}
		f.songs.moodErr = errors.New("readonly database")
		_, err := f.lib.AnalyzeSongMood(context.Background(), "s1")
		assert.Error(t, err)
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
	assert.Equal(t, "", firstNonEmpty(" ", "\t"))
}
