package handler

import (
	"net/http"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type SongHandler struct {
	songService *service.SongService
}

func NewSongHandler(songService *service.SongService) *SongHandler {
	return &SongHandler{songService: songService}
}

// Search handles GET /songs/search?q=
func (h *SongHandler) Search(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.songService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, "Search songs", err, "Failed to search songs")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// Add handles POST /songs
func (h *SongHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.AddSongRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	song, err := h.songService.Add(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, "Add song", err, "Failed to share song")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, song)
}

// Feed handles GET /songs?limit=N
func (h *SongHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	songs, err := h.songService.Feed(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "Song feed", err, "Failed to get songs")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"songs": songs})
}
