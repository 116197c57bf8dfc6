package handler

import (
	"net/http"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile handles GET /profiles/{id}
// is_following is only set when the request carries a token.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID, middleware.ViewerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "GetProfile", err, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// GetMe handles GET /me
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.profileService.Get(r.Context(), userID, nil)
	if err != nil {
		writeServiceError(w, "GetMe", err, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, "UpdateMe", err, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.profileService.Search(r.Context(), r.URL.Query().Get("q"), middleware.ViewerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "Search", err, "Failed to search users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GetFollowers handles GET /profiles/{id}/followers
func (h *ProfileHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}

	resp, err := h.profileService.Followers(r.Context(), userID, middleware.ViewerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "GetFollowers", err, "Failed to get followers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetFollowing handles GET /profiles/{id}/following
func (h *ProfileHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}

	resp, err := h.profileService.Following(r.Context(), userID, middleware.ViewerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, "GetFollowing", err, "Failed to get following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ValidateSignup handles POST /signup/validate
// The account itself is created by the auth provider; this only checks the form.
func (h *ProfileHandler) ValidateSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupCheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.profileService.ValidateSignup(r.Context(), req); err != nil {
		writeServiceError(w, "ValidateSignup", err, "Failed to validate signup")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
