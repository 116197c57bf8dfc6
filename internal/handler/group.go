package handler

import (
	"net/http"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// Create handles POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateGroupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, "Create group", err, "Failed to create group")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, group)
}

// Mine handles GET /groups/mine
func (h *GroupHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	groups, err := h.groupService.Mine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "My groups", err, "Failed to get groups")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Search handles GET /groups/search?q=
func (h *GroupHandler) Search(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, "Search groups", err, "Failed to search groups")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// Join handles POST /groups/{id}/members
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	groupID, ok := uuidParam(w, r, "id", "group")
	if !ok {
		return
	}

	if err := h.groupService.Join(r.Context(), groupID, userID); err != nil {
		writeServiceError(w, "Join group", err, "Failed to join group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leave handles DELETE /groups/{id}/members
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	groupID, ok := uuidParam(w, r, "id", "group")
	if !ok {
		return
	}

	if err := h.groupService.Leave(r.Context(), groupID, userID); err != nil {
		writeServiceError(w, "Leave group", err, "Failed to leave group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /groups/{id}/members
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	groupID, ok := uuidParam(w, r, "id", "group")
	if !ok {
		return
	}

	members, err := h.groupService.Members(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, "Group members", err, "Failed to get members")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}
