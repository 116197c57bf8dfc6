package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type EngagementHandler struct {
	engagementService *service.EngagementService
}

func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

// toggleBody is the state the client is displaying when the user taps.
type toggleBody struct {
	Current      bool `json:"current"`
	DisplayCount int  `json:"display_count"`
}

// toggleFailure carries the state to display alongside the error.
type toggleFailure struct {
	httputil.ErrorResponse
	Result model.ToggleResult `json:"result"`
}

// ToggleLike handles POST /posts/{id}/like
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "id", "post")
	if !ok {
		return
	}
	h.toggle(w, r, model.ToggleLike, postID)
}

// ToggleFollow handles POST /profiles/{id}/follow
func (h *EngagementHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	targetID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}
	h.toggle(w, r, model.ToggleFollow, targetID)
}

func (h *EngagementHandler) toggle(w http.ResponseWriter, r *http.Request, kind model.ToggleKind, target uuid.UUID) {
	actor, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var body toggleBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if body.DisplayCount < 0 {
		httputil.WriteBadRequest(w, "display_count must not be negative")
		return
	}

	result, err := h.engagementService.Toggle(r.Context(), model.ToggleRequest{
		Kind:         kind,
		Actor:        actor,
		Target:       target,
		Current:      body.Current,
		DisplayCount: body.DisplayCount,
	})
	if err != nil {
		if errors.Is(err, model.ErrToggleFailed) {
			log.Printf("[ERROR] Toggle handler: kind=%s target=%s err=%v", kind, target, err)
			httputil.WriteJSON(w, http.StatusBadGateway, toggleFailure{
				ErrorResponse: httputil.ErrorResponse{Error: httputil.ErrorDetail{
					Code:    httputil.ErrCodeUpstream,
					Message: "Could not save the change",
				}},
				Result: result,
			})
			return
		}
		writeServiceError(w, "Toggle", err, "Failed to update")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
