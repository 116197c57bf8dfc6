package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peerform/internal/cache"
	"peerform/internal/config"
	"peerform/internal/database"
	"peerform/internal/handler"
	"peerform/internal/music"
	"peerform/internal/queue"
	"peerform/internal/redis"
	"peerform/internal/repository"
	"peerform/internal/service"
	"peerform/internal/storage"
	"peerform/internal/supersede"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Optional Redis for the feed cache and the engagement stream
	var (
		feedCache cache.FeedCache = cache.NopFeedCache{}
		publisher queue.Publisher = queue.NopPublisher{}
	)
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			return err
		}
		feedCache = cache.NewFeedCache(rdb.Client, cfg.FeedCacheTTL)
		publisher = queue.NewPublisher(rdb.Client)
		log.Println("Redis connected: feed cache and engagement events enabled")
	} else {
		log.Println("REDIS_URL not set: feed cache and engagement events disabled")
	}

	// 4. External collaborators
	urls, err := storage.NewResolver(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}
	deezer := music.NewDeezerClient(cfg.DeezerBaseURL, cfg.DeezerRateLimit, cfg.RequestTimeout)

	var pusher service.Pusher
	if cfg.PushEnabled() {
		fcm, err := service.NewFCMClient(ctx, cfg.FCMProjectID, cfg.FCMClientEmail, cfg.FCMPrivateKey)
		if err != nil {
			return fmt.Errorf("failed to init FCM: %w", err)
		}
		pusher = fcm
	}

	// 5. Repositories and services
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	songRepo := repository.NewSongRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)

	feedService := service.NewFeedService(postRepo, likeRepo, urls, feedCache, supersede.NewTracker(), cfg.RequestTimeout, cfg.FeedFanout)
	leaderboardService := service.NewLeaderboardService(statsRepo, followRepo, groupRepo, profileRepo, urls, cfg.RequestTimeout, cfg.LeaderboardFanout)
	engagementService := service.NewEngagementService(likeRepo, followRepo, postRepo, publisher, feedCache, cfg.RequestTimeout)
	postService := service.NewPostService(postRepo, groupRepo, urls, publisher, feedCache)
	commentService := service.NewCommentService(commentRepo, postRepo, urls, publisher, feedCache)
	groupService := service.NewGroupService(groupRepo, urls)
	profileService := service.NewProfileService(profileRepo, followRepo, statsRepo, urls)
	songService := service.NewSongService(songRepo, deezer, urls)
	pushService := service.NewPushService(tokenRepo, pusher)
	notifService := service.NewNotificationService(notifRepo, profileRepo, pushService)

	// 6. Setup Server
	router := NewRouter(RouterConfig{
		FeedHandler:         handler.NewFeedHandler(feedService),
		LeaderboardHandler:  handler.NewLeaderboardHandler(leaderboardService),
		EngagementHandler:   handler.NewEngagementHandler(engagementService),
		PostHandler:         handler.NewPostHandler(postService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		GroupHandler:        handler.NewGroupHandler(groupService),
		ProfileHandler:      handler.NewProfileHandler(profileService),
		SongHandler:         handler.NewSongHandler(songService),
		NotificationHandler: handler.NewNotificationHandler(notifService, pushService),
		JWTSecret:           cfg.JWTSecret,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
