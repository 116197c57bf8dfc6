package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"peerform/internal/httputil"
	"peerform/internal/model"
)

var (
	badRequestErrors = []error{
		model.ErrInvalidPostKind, model.ErrImageRequired, model.ErrCaptionTooLong, model.ErrInvalidFeedLimit,
		model.ErrContentRequired, model.ErrContentTooLong,
		model.ErrUsernameRequired, model.ErrUsernameInvalid, model.ErrPasswordRequired,
		model.ErrPasswordTooShort, model.ErrPasswordMismatch, model.ErrNameRequired, model.ErrEmptySearchQuery,
		model.ErrGroupNameRequired, model.ErrGroupNameTooLong, model.ErrGroupGoalRequired,
		model.ErrInvalidPeriod, model.ErrInvalidToggleKind, model.ErrCannotFollowSelf,
		model.ErrSongTitleRequired, model.ErrSongArtistRequired, model.ErrTokenRequired,
	}
	notFoundErrors = []error{
		model.ErrPostNotFound, model.ErrProfileNotFound, model.ErrCommentNotFound,
		model.ErrGroupNotFound, model.ErrNotificationNotFound,
	}
	forbiddenErrors = []error{
		model.ErrNotPostOwner, model.ErrNotCommentOwner, model.ErrGroupPrivate,
		model.ErrNotGroupMember, model.ErrOwnerCannotLeave,
	}
	upstreamErrors = []error{
		model.ErrFeedLoad, model.ErrStatsUnavailable, model.ErrMusicSearchFailed, model.ErrToggleFailed,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeServiceError maps a service error to the error envelope. Unknown
// errors are logged and reported as fallback.
func writeServiceError(w http.ResponseWriter, op string, err error, fallback string) {
	switch {
	case isAny(err, badRequestErrors):
		httputil.WriteBadRequest(w, err.Error())
	case isAny(err, notFoundErrors):
		httputil.WriteNotFound(w, err.Error())
	case isAny(err, forbiddenErrors):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, model.ErrUsernameTaken):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrSuperseded):
		httputil.WriteSuperseded(w)
	case isAny(err, upstreamErrors):
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteBadGateway(w, fallback)
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, fallback)
	}
}

// uuidParam parses a UUID URL parameter, writing a 400 on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return n, nil
}
