package rest

import (
	"errors"
	"net/http"

	"github.com/ewilliams-labs/encore/internal/core/services"
)

const maxMultipartMemory = 8 << 20

// UploadSong handles POST /songs
func (h *Handler) UploadSong(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	song, err := h.lib.UploadSong(r.Context(), services.UploadInput{
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		Album:    r.FormValue("album"),
		Lyrics:   r.FormValue("lyrics"),
		Filename: fh.Filename,
		File:     file,
		Size:     fh.Size,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, song)
}

// ListSongs handles GET /songs
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.lib.ListSongs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// GetSong handles GET /songs/{id}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.lib.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// DeleteSong handles DELETE /songs/{id}
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeleteSong(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeMood handles POST /songs/{id}/mood
func (h *Handler) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.lib.AnalyzeSongMood(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	switch outcome.Status {
	case services.AnalysisInsufficientLyrics:
		status = http.StatusUnprocessableEntity
	case services.AnalysisFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, outcome)
}
