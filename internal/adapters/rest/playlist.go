package rest

import (
	"encoding/json"
	"net/http"
)

type createPlaylistRequest struct {
	Name string `json:"name"`
}

// CreatePlaylist handles POST /playlists
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeErrorWithCode(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", errCodeUnsupportedMedia)
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := h.lib.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

// GetPlaylist handles GET /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.lib.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// DeletePlaylist handles DELETE /playlists/{id}
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.DeletePlaylist(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSongToPlaylist handles PUT /playlists/{id}/songs/{songID}
func (h *Handler) AddSongToPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.lib.AddSongToPlaylist(r.Context(), r.PathValue("id"), r.PathValue("songID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// RemoveSongFromPlaylist handles DELETE /playlists/{id}/songs/{songID}
func (h *Handler) RemoveSongFromPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.lib.RemoveSongFromPlaylist(r.Context(), r.PathValue("id"), r.PathValue("songID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
