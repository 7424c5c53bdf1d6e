package domain

import "time"

// Comment is a note left on a song.
type Comment struct {
	ID        string    `json:"id"`
	SongID    string    `json:"song_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
