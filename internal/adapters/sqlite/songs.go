package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

const songColumns = `id, title, artist, album, duration_ms, asset_key, size, mime_type, lyrics,
	mood, mood_confidence, uploaded_at, analyzed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (domain.Song, error) {
	var (
		s          domain.Song
		album      sql.NullString
		duration   sql.NullInt64
		lyrics     sql.NullString
		mood       sql.NullString
		confidence sql.NullFloat64
		uploadedAt sql.NullTime
		analyzedAt sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Artist,
		&album,
		&duration,
		&s.AssetKey,
		&s.Size,
		&s.MimeType,
		&lyrics,
		&mood,
		&confidence,
		&uploadedAt,
		&analyzedAt,
	); err != nil {
		return domain.Song{}, err
	}
	s.Album = album.String
	s.DurationMs = int(duration.Int64)
	s.Lyrics = lyrics.String
	s.Mood = domain.Mood(mood.String)
	s.MoodConfidence = confidence.Float64
	if uploadedAt.Valid {
		s.UploadedAt = uploadedAt.Time.UTC()
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time.UTC()
		s.AnalyzedAt = &t
	}
	return s, nil
}

func (a *Adapter) GetSong(ctx context.Context, id string) (domain.Song, error) {
	row := a.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id)
	s, err := scanSong(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, fmt.Errorf("failed to load song: %w", err)
	}
	return s, nil
}

func (a *Adapter) ListSongs(ctx context.Context) ([]domain.Song, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT "+songColumns+" FROM songs ORDER BY uploaded_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}
	return songs, nil
}

func (a *Adapter) SaveSong(ctx context.Context, s domain.Song) error {
	query := `
		INSERT INTO songs (
			id, title, artist, album, duration_ms, asset_key, size, mime_type, lyrics,
			mood, mood_confidence, uploaded_at, analyzed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			album=excluded.album,
			duration_ms=excluded.duration_ms,
			asset_key=excluded.asset_key,
			size=excluded.size,
			mime_type=excluded.mime_type,
			lyrics=excluded.lyrics,
			mood=excluded.mood,
			mood_confidence=excluded.mood_confidence,
			analyzed_at=excluded.analyzed_at;
	`
	uploadedAt := s.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}
	var analyzedAt sql.NullTime
	if s.AnalyzedAt != nil {
		analyzedAt = sql.NullTime{Time: s.AnalyzedAt.UTC(), Valid: true}
	}
	if _, err := a.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.Title,
		s.Artist,
		nullString(s.Album),
		s.DurationMs,
		s.AssetKey,
		s.Size,
		s.MimeType,
		nullString(s.Lyrics),
		nullString(string(s.Mood)),
		s.MoodConfidence,
		uploadedAt.UTC(),
		analyzedAt,
	); err != nil {
		return fmt.Errorf("failed to save song %s: %w", s.ID, err)
	}
	return nil
}

func (a *Adapter) DeleteSong(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return requireAffected(res)
}

func (a *Adapter) UpdateSongMood(ctx context.Context, id string, mood domain.Mood, confidence float64) error {
	res, err := a.db.ExecContext(ctx,
		"UPDATE songs SET mood = ?, mood_confidence = ?, analyzed_at = ? WHERE id = ?",
		string(mood), confidence, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update song mood: %w", err)
	}
	return requireAffected(res)
}

func (a *Adapter) UpdateSongDuration(ctx context.Context, id string, durationMs int) error {
	res, err := a.db.ExecContext(ctx, "UPDATE songs SET duration_ms = ? WHERE id = ?", durationMs, id)
	if err != nil {
		return fmt.Errorf("failed to update song duration: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
