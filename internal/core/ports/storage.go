package ports

import (
	"context"
	"io"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// AssetStore holds uploaded audio bytes. Implementations return
// domain.ErrNotFound for missing keys.
type AssetStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error
	Stat(ctx context.Context, key string) (domain.AssetInfo, error)
	// OpenRange returns a reader over exactly length bytes starting at offset.
	// The caller closes it once the window has been consumed.
	OpenRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AudioProber inspects an uploaded file before it is stored.
type AudioProber interface {
	Probe(r io.ReadSeeker) (domain.AudioMetadata, error)
}

// DurationAnalyzer decodes an audio stream to measure its length.
type DurationAnalyzer interface {
	Duration(r io.Reader) (int, error)
}
