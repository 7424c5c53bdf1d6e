package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

const unknownArtist = "Unknown Artist"

// Library coordinates songs, their stored audio, playlists and comments.
type Library struct {
	songs     ports.SongRepository
	playlists ports.PlaylistRepository
	comments  ports.CommentRepository
	assets    ports.AssetStore
	prober    ports.AudioProber
	moods     ports.MoodPredictor
	queue     ports.AnalysisQueue
	now       func() time.Time
}

// LibraryDeps groups the adapters a Library is built from. Prober, Moods and
// Queue are optional.
type LibraryDeps struct {
	Songs     ports.SongRepository
	Playlists ports.PlaylistRepository
	Comments  ports.CommentRepository
	Assets    ports.AssetStore
	Prober    ports.AudioProber
	Moods     ports.MoodPredictor
	Queue     ports.AnalysisQueue
}

// NewLibrary constructs a Library.
func NewLibrary(deps LibraryDeps) *Library {
	return &Library{
		songs:     deps.Songs,
		playlists: deps.Playlists,
		comments:  deps.Comments,
		assets:    deps.Assets,
		prober:    deps.Prober,
		moods:     deps.Moods,
		queue:     deps.Queue,
		now:       time.Now,
	}
}

// SetQueue attaches the post-upload analysis queue. The queue usually needs
// the Library itself, so it is wired after construction.
func (l *Library) SetQueue(q ports.AnalysisQueue) {
	l.queue = q
}

// UploadInput carries an uploaded file and the metadata typed by the user.
type UploadInput struct {
	Title    string
	Artist   string
	Album    string
	Lyrics   string
	Filename string
	File     io.ReadSeeker
	Size     int64
}

// UploadSong stores the audio asset and records the song. Metadata left
// blank by the user is filled from the file's tags.
func (l *Library) UploadSong(ctx context.Context, in UploadInput) (domain.Song, error) {
	if in.File == nil || in.Size <= 0 {
		return domain.Song{}, fmt.Errorf("service: audio file is required: %w", domain.ErrInvalidArgument)
	}

	var meta domain.AudioMetadata
	if l.prober != nil {
		probed, err := l.prober.Probe(in.File)
		if err != nil {
			return domain.Song{}, fmt.Errorf("service: failed to inspect upload: %w", err)
		}
		meta = probed
		if _, err := in.File.Seek(0, io.SeekStart); err != nil {
			return domain.Song{}, fmt.Errorf("service: failed to rewind upload: %w", err)
		}
	}

	song := domain.Song{
		ID:         uuid.NewString(),
		Title:      firstNonEmpty(in.Title, meta.Title, titleFromFilename(in.Filename)),
		Artist:     firstNonEmpty(in.Artist, meta.Artist, unknownArtist),
		Album:      firstNonEmpty(in.Album, meta.Album),
		Lyrics:     firstNonEmpty(in.Lyrics, meta.Lyrics),
		Size:       in.Size,
		MimeType:   firstNonEmpty(meta.MimeType, domain.DefaultMimeType),
		UploadedAt: l.now().UTC(),
	}
	if song.Title == "" {
		return domain.Song{}, fmt.Errorf("service: song title cannot be empty: %w", domain.ErrInvalidArgument)
	}
	song.AssetKey = song.ID + assetExtension(meta.Extension, in.Filename)

	if err := l.assets.Put(ctx, song.AssetKey, in.File, in.Size, song.MimeType); err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to store audio: %w", err)
	}
	if err := l.songs.SaveSong(ctx, song); err != nil {
		if delErr := l.assets.Delete(ctx, song.AssetKey); delErr != nil {
			log.Printf("WARN library: failed to remove orphaned asset %s: %v", song.AssetKey, delErr)
		}
		return domain.Song{}, fmt.Errorf("service: failed to persist song: %w", err)
	}

	if l.queue != nil {
		l.queue.Enqueue(song.ID)
	}
	log.Printf("library: uploaded %q by %q as %s", song.Title, song.Artist, song.ID)
	return song, nil
}

// GetSong returns a single song.
func (l *Library) GetSong(ctx context.Context, id string) (domain.Song, error) {
	if id == "" {
		return domain.Song{}, fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	song, err := l.songs.GetSong(ctx, id)
	if err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to load song: %w", err)
	}
	return song, nil
}

// ListSongs returns every song, newest upload first.
func (l *Library) ListSongs(ctx context.Context) ([]domain.Song, error) {
	songs, err := l.songs.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list songs: %w", err)
	}
	return songs, nil
}

// DeleteSong removes the song record and then its audio.
func (l *Library) DeleteSong(ctx context.Context, id string) error {
	song, err := l.GetSong(ctx, id)
	if err != nil {
		return err
	}
	if err := l.songs.DeleteSong(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete song: %w", err)
	}
	if err := l.assets.Delete(ctx, song.AssetKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Printf("WARN library: failed to delete asset %s: %v", song.AssetKey, err)
	}
	return nil
}

// RecordDuration stores a measured song duration.
func (l *Library) RecordDuration(ctx context.Context, id string, durationMs int) error {
	if err := l.songs.UpdateSongDuration(ctx, id, durationMs); err != nil {
		return fmt.Errorf("service: failed to save duration: %w", err)
	}
	return nil
}

// OpenAsset opens the whole stored file of a song for background processing.
func (l *Library) OpenAsset(ctx context.Context, id string) (io.ReadCloser, error) {
	song, err := l.GetSong(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := l.assets.Stat(ctx, song.AssetKey)
	if err != nil {
		return nil, fmt.Errorf("service: failed to locate asset: %w", err)
	}
	rc, err := l.assets.OpenRange(ctx, song.AssetKey, 0, info.Size)
	if err != nil {
		return nil, fmt.Errorf("service: failed to open asset: %w", err)
	}
	return rc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func titleFromFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func assetExtension(detected, filename string) string {
	if detected != "" {
		return "." + strings.TrimPrefix(strings.ToLower(detected), ".")
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return ".mp3"
}
