package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

func (a *Adapter) AddComment(ctx context.Context, c domain.Comment) error {
	if _, err := a.db.ExecContext(ctx,
		"INSERT INTO comments (id, song_id, author, content, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.SongID, c.Author, c.Content, c.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// ListComments returns a song's comments, newest first.
func (a *Adapter) ListComments(ctx context.Context, songID string) ([]domain.Comment, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, song_id, author, content, created_at
		FROM comments
		WHERE song_id = ?
		ORDER BY created_at DESC, id DESC
	`, songID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var (
			c         domain.Comment
			createdAt sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.SongID, &c.Author, &c.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time.UTC()
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}
