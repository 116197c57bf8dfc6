package handler

import (
	"net/http"

	"peerform/internal/httputil"
	"peerform/internal/model"
	"peerform/internal/service"
	"peerform/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notifService *service.NotificationService
	pushService  *service.PushService
}

func NewNotificationHandler(notifService *service.NotificationService, pushService *service.PushService) *NotificationHandler {
	return &NotificationHandler{
		notifService: notifService,
		pushService:  pushService,
	}
}

// List handles GET /notifications?limit=N
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, err := intQuery(r, "limit")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid limit parameter")
		return
	}

	notifications, err := h.notifService.List(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, "List notifications", err, "Failed to get notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	count, err := h.notifService.UnreadCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Unread count", err, "Failed to get unread count")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkRead handles PATCH /notifications/read
// An empty notification_ids list marks everything read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.MarkReadRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.notifService.MarkRead(r.Context(), userID, req.NotificationIDs); err != nil {
		writeServiceError(w, "Mark read", err, "Failed to mark notifications as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles PATCH /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.notifService.MarkAllRead(r.Context(), userID); err != nil {
		writeServiceError(w, "Mark all read", err, "Failed to mark notifications as read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	notificationID, ok := uuidParam(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notifService.Delete(r.Context(), userID, notificationID); err != nil {
		writeServiceError(w, "Delete notification", err, "Failed to delete notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.notifService.Clear(r.Context(), userID); err != nil {
		writeServiceError(w, "Clear notifications", err, "Failed to clear notifications")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterToken handles POST /devices
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.pushService.Register(r.Context(), userID, req); err != nil {
		writeServiceError(w, "Register token", err, "Failed to register device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveToken handles DELETE /devices with the same body as RegisterToken.
func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.pushService.Remove(r.Context(), userID, req.Token); err != nil {
		writeServiceError(w, "Remove token", err, "Failed to remove device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
