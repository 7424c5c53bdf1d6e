package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// CreatePlaylist creates an empty playlist. Names must be unique.
func (l *Library) CreatePlaylist(ctx context.Context, name string) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, fmt.Errorf("service: playlist name cannot be empty: %w", domain.ErrInvalidArgument)
	}

	if _, err := l.playlists.FindPlaylistByName(ctx, name); err == nil {
		return domain.Playlist{}, fmt.Errorf("service: playlist %q: %w", name, domain.ErrPlaylistExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Playlist{}, fmt.Errorf("service: failed to check playlist name: %w", err)
	}

	p, err := domain.NewPlaylist(ulid.Make().String(), name)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: %w", err)
	}
	p.CreatedAt = l.now().UTC()

	if err := l.playlists.SavePlaylist(ctx, *p); err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to persist new playlist: %w", err)
	}
	return *p, nil
}

// GetPlaylist returns a playlist with its member song ids.
func (l *Library) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	if id == "" {
		return domain.Playlist{}, fmt.Errorf("service: playlist id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	p, err := l.playlists.GetPlaylist(ctx, id)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to load playlist: %w", err)
	}
	return p, nil
}

// DeletePlaylist removes a playlist. Songs are untouched.
func (l *Library) DeletePlaylist(ctx context.Context, id string) error {
	if _, err := l.GetPlaylist(ctx, id); err != nil {
		return err
	}
	if err := l.playlists.DeletePlaylist(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete playlist: %w", err)
	}
	return nil
}

// AddSongToPlaylist adds an existing song to a playlist.
func (l *Library) AddSongToPlaylist(ctx context.Context, playlistID, songID string) (domain.Playlist, error) {
	return l.updatePlaylist(ctx, playlistID, songID, (*domain.Playlist).Add)
}

// RemoveSongFromPlaylist drops a song from a playlist.
func (l *Library) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) (domain.Playlist, error) {
	return l.updatePlaylist(ctx, playlistID, songID, (*domain.Playlist).Remove)
}

func (l *Library) updatePlaylist(ctx context.Context, playlistID, songID string, mutate func(*domain.Playlist, string) error) (domain.Playlist, error) {
	if _, err := l.GetSong(ctx, songID); err != nil {
		return domain.Playlist{}, err
	}
	p, err := l.GetPlaylist(ctx, playlistID)
	if err != nil {
		return domain.Playlist{}, err
	}
	if err := mutate(&p, songID); err != nil {
		return domain.Playlist{}, fmt.Errorf("service: domain rule violation: %w", err)
	}
	if err := l.playlists.SavePlaylist(ctx, p); err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to save playlist: %w", err)
	}
	return p, nil
}
