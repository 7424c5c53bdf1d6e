package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrDuplicateSong  = errors.New("domain: song already in playlist")
	ErrNotInPlaylist  = errors.New("domain: song not in playlist")
	ErrPlaylistExists = errors.New("domain: playlist already exists")
)

// Playlist is a named set of songs.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SongIDs   []string  `json:"song_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPlaylist(id, name string) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, ErrInvalidArgument
	}
	return &Playlist{
		ID:      id,
		Name:    name,
		SongIDs: []string{},
	}, nil
}

// Contains reports whether songID is a member of the playlist.
func (p *Playlist) Contains(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// Add appends songID to the playlist. Adding a song twice returns
// ErrDuplicateSong and leaves the playlist unchanged.
func (p *Playlist) Add(songID string) error {
	if songID == "" {
		return ErrInvalidArgument
	}
	if p.Contains(songID) {
		return ErrDuplicateSong
	}
	p.SongIDs = append(p.SongIDs, songID)
	return nil
}

// Remove drops songID from the playlist.
func (p *Playlist) Remove(songID string) error {
	for i, id := range p.SongIDs {
		if id == songID {
			p.SongIDs = append(p.SongIDs[:i], p.SongIDs[i+1:]...)
			return nil
		}
	}
	return ErrNotInPlaylist
}
