package handler

import (
	"net/http"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetFriends handles GET /leaderboard/friends?period=week|month|year
func (h *LeaderboardHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	entries, err := h.leaderboardService.FriendLeaderboard(r.Context(), userID, period)
	if err != nil {
		writeServiceError(w, "FriendLeaderboard", err, "Failed to load leaderboard")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LeaderboardResponse{Period: period, Entries: entries})
}

// GetGroup handles GET /groups/{id}/leaderboard?period=week|month|year
func (h *LeaderboardHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := uuidParam(w, r, "id", "group")
	if !ok {
		return
	}

	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	entries, err := h.leaderboardService.GroupLeaderboard(r.Context(), groupID, period)
	if err != nil {
		writeServiceError(w, "GroupLeaderboard", err, "Failed to load leaderboard")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LeaderboardResponse{Period: period, Entries: entries})
}

// GetStats handles GET /profiles/{id}/stats
func (h *LeaderboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}

	stats, err := h.leaderboardService.Stats(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, "Stats", err, "Failed to load workout stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
