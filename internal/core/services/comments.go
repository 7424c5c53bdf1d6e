package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

const anonymousAuthor = "anonymous"

// AddComment attaches a comment to a song.
func (l *Library) AddComment(ctx context.Context, songID, author, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, fmt.Errorf("service: comment cannot be empty: %w", domain.ErrInvalidArgument)
	}
	if _, err := l.GetSong(ctx, songID); err != nil {
		return domain.Comment{}, err
	}

	c := domain.Comment{
		ID:        ulid.Make().String(),
		SongID:    songID,
		Author:    firstNonEmpty(author, anonymousAuthor),
		Content:   content,
		CreatedAt: l.now().UTC(),
	}
	if err := l.comments.AddComment(ctx, c); err != nil {
		return domain.Comment{}, fmt.Errorf("service: failed to save comment: %w", err)
	}
	return c, nil
}

// ListComments returns a song's comments, newest first.
func (l *Library) ListComments(ctx context.Context, songID string) ([]domain.Comment, error) {
	if _, err := l.GetSong(ctx, songID); err != nil {
		return nil, err
	}
	comments, err := l.comments.ListComments(ctx, songID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list comments: %w", err)
	}
	return comments, nil
}
