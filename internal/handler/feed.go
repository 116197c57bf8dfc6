package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

type feedResponse struct {
	Posts []model.FeedPost `json:"posts"`
}

// GetFeed handles GET /feed
//
// Query params:
//   - type: "post" (default) or "achievement"
//   - limit: optional, defaults to 20
//   - refresh: "1" or "true" skips the cached result
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.FeedFilter{}, "main")
}

// GetGroupFeed handles GET /groups/{id}/feed
func (h *FeedHandler) GetGroupFeed(w http.ResponseWriter, r *http.Request) {
	groupID, ok := uuidParam(w, r, "id", "group")
	if !ok {
		return
	}
	h.serve(w, r, model.FeedFilter{GroupID: &groupID}, "group:"+groupID.String())
}

// GetProfilePosts handles GET /profiles/{id}/posts
func (h *FeedHandler) GetProfilePosts(w http.ResponseWriter, r *http.Request) {
	authorID, ok := uuidParam(w, r, "id", "profile")
	if !ok {
		return
	}
	h.serve(w, r, model.FeedFilter{AuthorID: &authorID}, "profile:"+authorID.String())
}

func (h *FeedHandler) serve(w http.ResponseWriter, r *http.Request, filter model.FeedFilter, view string) {
	q := r.URL.Query()

	filter.Kind = model.PostKind(q.Get("type"))
	limit, err := intQuery(r, "limit")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}
	filter.Limit = limit
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	viewer := middleware.ViewerFromContext(r.Context())

	req := service.FeedRequest{
		Filter:  filter,
		Viewer:  viewer,
		Refresh: refresh,
		Scope:   feedScope(viewer, view, filter.Kind),
	}

	posts, err := h.feedService.GetFeed(r.Context(), req)
	if err != nil {
		writeServiceError(w, "GetFeed", err, "Failed to load feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feedResponse{Posts: posts})
}

// feedScope groups loads that replace each other: the same viewer looking at
// the same view. Anonymous loads are never superseded.
func feedScope(viewer *uuid.UUID, view string, kind model.PostKind) string {
	if viewer == nil {
		return ""
	}
	if kind == "" {
		kind = model.PostKindPost
	}
	return viewer.String() + ":" + view + ":" + string(kind)
}
