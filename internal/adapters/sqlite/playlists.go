package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

func (a *Adapter) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	return a.loadPlaylist(ctx, "SELECT id, name, created_at FROM playlists WHERE id = ?", id)
}

func (a *Adapter) FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error) {
	return a.loadPlaylist(ctx, "SELECT id, name, created_at FROM playlists WHERE name = ?", name)
}

func (a *Adapter) loadPlaylist(ctx context.Context, query string, arg string) (domain.Playlist, error) {
	var (
		p         domain.Playlist
		createdAt sql.NullTime
	)
	if err := a.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time.UTC()
	}
	p.SongIDs = []string{}

	rows, err := a.db.QueryContext(ctx,
		"SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC", p.ID)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to load playlist songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var songID string
		if err := rows.Scan(&songID); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		p.SongIDs = append(p.SongIDs, songID)
	}
	if err := rows.Err(); err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to iterate playlist songs: %w", err)
	}
	return p, nil
}

func (a *Adapter) SavePlaylist(ctx context.Context, p domain.Playlist) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, p.ID, p.Name, createdAt.UTC()); err != nil {
		return fmt.Errorf("failed to save playlist metadata: %w", err)
	}

	// Membership is rewritten wholesale so positions follow SongIDs order.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear old songs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, songID := range p.SongIDs {
		if _, err := stmt.ExecContext(ctx, p.ID, songID, i); err != nil {
			return fmt.Errorf("failed to link song %s: %w", songID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (a *Adapter) DeletePlaylist(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireAffected(res)
}
