package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"peerform/internal/handler"
	"peerform/internal/httputil"
	authmw "peerform/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	FeedHandler         *handler.FeedHandler
	LeaderboardHandler  *handler.LeaderboardHandler
	EngagementHandler   *handler.EngagementHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	GroupHandler        *handler.GroupHandler
	ProfileHandler      *handler.ProfileHandler
	SongHandler         *handler.SongHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/signup/validate", cfg.ProfileHandler.ValidateSignup)

	// Readable without a token; a token personalizes is_following and liked_by_me
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/feed", cfg.FeedHandler.GetFeed)

		r.Get("/profiles/search", cfg.ProfileHandler.Search)
		r.Get("/profiles/{id}", cfg.ProfileHandler.GetProfile)
		r.Get("/profiles/{id}/followers", cfg.ProfileHandler.GetFollowers)
		r.Get("/profiles/{id}/following", cfg.ProfileHandler.GetFollowing)
		r.Get("/profiles/{id}/posts", cfg.FeedHandler.GetProfilePosts)
		r.Get("/profiles/{id}/stats", cfg.LeaderboardHandler.GetStats)

		r.Get("/posts/{id}/comments", cfg.CommentHandler.List)

		r.Get("/groups/search", cfg.GroupHandler.Search)
		r.Get("/groups/{id}/members", cfg.GroupHandler.Members)
		r.Get("/groups/{id}/feed", cfg.FeedHandler.GetGroupFeed)
		r.Get("/groups/{id}/leaderboard", cfg.LeaderboardHandler.GetGroup)

		r.Get("/songs", cfg.SongHandler.Feed)
		r.Get("/songs/search", cfg.SongHandler.Search)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.ProfileHandler.GetMe)
		r.Patch("/me", cfg.ProfileHandler.UpdateMe)

		r.Post("/profiles/{id}/follow", cfg.EngagementHandler.ToggleFollow)
		r.Post("/posts/{id}/like", cfg.EngagementHandler.ToggleLike)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		r.Post("/groups", cfg.GroupHandler.Create)
		r.Get("/groups/mine", cfg.GroupHandler.Mine)
		r.Post("/groups/{id}/members", cfg.GroupHandler.Join)
		r.Delete("/groups/{id}/members", cfg.GroupHandler.Leave)

		r.Get("/leaderboard/friends", cfg.LeaderboardHandler.GetFriends)

		r.Post("/songs", cfg.SongHandler.Add)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Delete("/", cfg.NotificationHandler.Clear)
			r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
			r.Patch("/read", cfg.NotificationHandler.MarkRead)
			r.Patch("/read-all", cfg.NotificationHandler.MarkAllRead)
			r.Delete("/{id}", cfg.NotificationHandler.Delete)
		})

		r.Post("/devices", cfg.NotificationHandler.RegisterToken)
		r.Delete("/devices", cfg.NotificationHandler.RemoveToken)
	})

	return r
}
