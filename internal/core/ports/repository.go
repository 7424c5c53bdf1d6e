package ports

import (
	"context"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

type SongRepository interface {
	GetSong(ctx context.Context, id string) (domain.Song, error)
	ListSongs(ctx context.Context) ([]domain.Song, error)
	SaveSong(ctx context.Context, s domain.Song) error
	DeleteSong(ctx context.Context, id string) error
	UpdateSongMood(ctx context.Context, id string, mood domain.Mood, confidence float64) error
	UpdateSongDuration(ctx context.Context, id string, durationMs int) error
}

type PlaylistRepository interface {
	GetPlaylist(ctx context.Context, id string) (domain.Playlist, error)
	FindPlaylistByName(ctx context.Context, name string) (domain.Playlist, error)
	SavePlaylist(ctx context.Context, p domain.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
}

type CommentRepository interface {
	AddComment(ctx context.Context, c domain.Comment) error
	ListComments(ctx context.Context, songID string) ([]domain.Comment, error)
}
