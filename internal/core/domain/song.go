package domain

import "time"

// DefaultMimeType is served when a song carries no detected content type.
const DefaultMimeType = "audio/mpeg"

// Song represents an uploaded audio file and its library metadata.
type Song struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Artist         string     `json:"artist"`
	Album          string     `json:"album,omitempty"`
	DurationMs     int        `json:"duration_ms,omitempty"`
	AssetKey       string     `json:"-"`
	Size           int64      `json:"size"`
	MimeType       string     `json:"mime_type"`
	Lyrics         string     `json:"lyrics,omitempty"`
	Mood           Mood       `json:"mood,omitempty"`
	MoodConfidence float64    `json:"mood_confidence,omitempty"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
}

// ContentType returns the MIME type used when streaming the song.
func (s Song) ContentType() string {
	if s.MimeType == "" {
		return DefaultMimeType
	}
	return s.MimeType
}

// AssetInfo describes a stored audio asset.
type AssetInfo struct {
	Key  string
	Size int64
}

// AudioMetadata holds what could be read from an uploaded file's tags.
type AudioMetadata struct {
	MimeType  string
	Extension string
	Title     string
	Artist    string
	Album     string
	Lyrics    string
}
