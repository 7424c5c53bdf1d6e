package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ewilliams-labs/encore/internal/core/services"
)

const defaultMaxUploadBytes = 50 << 20

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Options tunes the HTTP adapter.
type Options struct {
	// Debug enables per-request access logging.
	Debug bool
	// MaxUploadBytes caps the size of a song upload.
	MaxUploadBytes int64
	// Readiness lists the checks run by GET /ready, keyed by dependency name.
	Readiness map[string]ReadinessCheck
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	lib       *services.Library
	streamer  *services.Streamer
	maxUpload int64
	readiness map[string]ReadinessCheck

	router  *http.ServeMux
	handler http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(lib *services.Library, streamer *services.Streamer, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	h := &Handler{
		lib:       lib,
		streamer:  streamer,
		maxUpload: opts.MaxUploadBytes,
		readiness: opts.Readiness,
		router:    http.NewServeMux(),
	}

	h.routes()

	// The stdlib mux does the routing; chi's middleware wraps it.
	var handler http.Handler = h.router
	if opts.Debug {
		handler = middleware.Logger(handler)
	}
	handler = middleware.Recoverer(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	h.handler = handler

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /ready", h.ReadinessCheck)

	// Songs. GET patterns also match HEAD.
	h.router.HandleFunc("GET /songs/{id}/stream", h.StreamSong)
	h.router.HandleFunc("POST /songs", h.UploadSong)
	h.router.HandleFunc("GET /songs", h.ListSongs)
	h.router.HandleFunc("GET /songs/{id}", h.GetSong)
	h.router.HandleFunc("DELETE /songs/{id}", h.DeleteSong)
	h.router.HandleFunc("POST /songs/{id}/mood", h.AnalyzeMood)
	h.router.HandleFunc("POST /songs/{id}/comments", h.AddComment)
	h.router.HandleFunc("GET /songs/{id}/comments", h.ListComments)

	// Playlists
	h.router.HandleFunc("POST /playlists", h.CreatePlaylist)
	h.router.HandleFunc("GET /playlists/{id}", h.GetPlaylist)
	h.router.HandleFunc("DELETE /playlists/{id}", h.DeletePlaylist)
	h.router.HandleFunc("PUT /playlists/{id}/songs/{songID}", h.AddSongToPlaylist)
	h.router.HandleFunc("DELETE /playlists/{id}/songs/{songID}", h.RemoveSongFromPlaylist)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Encore is live"})
}

// ReadinessCheck runs every registered dependency check.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.readiness))
	for name, check := range h.readiness {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	writeJSON(w, status, body)
}
