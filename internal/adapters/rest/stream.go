package rest

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// StreamSong handles GET and HEAD /songs/{id}/stream
func (h *Handler) StreamSong(w http.ResponseWriter, r *http.Request) {
	songID := r.PathValue("id")
	rangeHeader := r.Header.Get("Range")

	var (
		resp domain.RangeResponse
		err  error
	)
	if r.Method == http.MethodHead {
		resp, err = h.streamer.Head(r.Context(), songID, rangeHeader)
	} else {
		resp, err = h.streamer.Stream(r.Context(), songID, rangeHeader)
	}
	if err != nil {
		var rangeErr domain.RangeNotSatisfiableError
		if errors.As(err, &rangeErr) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", rangeErr.Size))
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		writeServiceError(w, err)
		return
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	header := w.Header()
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Type", resp.MimeType)
	header.Set("Content-Length", strconv.FormatInt(resp.Length, 10))

	status := http.StatusOK
	if resp.Status == domain.StreamPartial {
		status = http.StatusPartialContent
		header.Set("Content-Range", resp.ContentRange())
	}
	w.WriteHeader(status)

	if resp.Body == nil {
		return
	}
	if _, err := io.CopyN(w, resp.Body, resp.Length); err != nil {
		// usually the player seeking away or closing the connection
		log.Printf("WARN rest: stream of %s ended early: %v", songID, err)
	}
}
