package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	"github.com/ewilliams-labs/encore/internal/core/ports"
)

// Streamer serves byte windows of stored songs. It keeps no state between
// requests.
type Streamer struct {
	songs  ports.SongRepository
	assets ports.AssetStore
}

// NewStreamer constructs a Streamer.
func NewStreamer(songs ports.SongRepository, assets ports.AssetStore) *Streamer {
	return &Streamer{songs: songs, assets: assets}
}

// Stream resolves songID to its asset and prepares a response for the given
// Range header value. A malformed header is treated as absent. The returned
// Body must be closed by the caller.
func (s *Streamer) Stream(ctx context.Context, songID, rangeHeader string) (domain.RangeResponse, error) {
	return s.stream(ctx, songID, rangeHeader, true)
}

// Head is Stream without opening the asset for reading.
func (s *Streamer) Head(ctx context.Context, songID, rangeHeader string) (domain.RangeResponse, error) {
	return s.stream(ctx, songID, rangeHeader, false)
}

func (s *Streamer) stream(ctx context.Context, songID, rangeHeader string, withBody bool) (domain.RangeResponse, error) {
	if songID == "" {
		return domain.RangeResponse{}, fmt.Errorf("service: song id cannot be empty: %w", domain.ErrInvalidArgument)
	}

	song, err := s.songs.GetSong(ctx, songID)
	if err != nil {
		return domain.RangeResponse{}, fmt.Errorf("service: failed to load song: %w", err)
	}

	info, err := s.assets.Stat(ctx, song.AssetKey)
	if err != nil {
		return domain.RangeResponse{}, fmt.Errorf("service: failed to locate asset: %w", err)
	}
	size := info.Size

	resp := domain.RangeResponse{
		Status:   domain.StreamFull,
		Length:   size,
		Total:    size,
		MimeType: song.ContentType(),
	}

	window, err := domain.ParseRange(rangeHeader, size)
	switch {
	case errors.Is(err, domain.ErrMalformedRange):
		window = nil
	case err != nil:
		return domain.RangeResponse{}, err
	}

	offset := int64(0)
	if window != nil {
		resp.Status = domain.StreamPartial
		resp.Range = window
		resp.Length = window.Len()
		offset = window.Start
	}

	if !withBody {
		return resp, nil
	}

	body, err := s.assets.OpenRange(ctx, song.AssetKey, offset, resp.Length)
	if err != nil {
		return domain.RangeResponse{}, fmt.Errorf("service: failed to open asset: %w", err)
	}
	resp.Body = body
	return resp, nil
}
