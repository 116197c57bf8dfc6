package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"peerform/internal/cache"
	"peerform/internal/config"
	"peerform/internal/database"
	"peerform/internal/queue"
	"peerform/internal/redis"
	"peerform/internal/repository"
	"peerform/internal/service"
)

// Run consumes the engagement stream until SIGINT or SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is required for the worker")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}

	var pusher service.Pusher
	if cfg.PushEnabled() {
		fcm, err := service.NewFCMClient(ctx, cfg.FCMProjectID, cfg.FCMClientEmail, cfg.FCMPrivateKey)
		if err != nil {
			return fmt.Errorf("failed to init FCM: %w", err)
		}
		pusher = fcm
	} else {
		log.Println("[Worker] FCM not configured: notifications are stored without push")
	}

	pushService := service.NewPushService(repository.NewDeviceTokenRepository(db), pusher)
	notifier := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewProfileRepository(db),
		pushService,
	)

	managerCfg := DefaultManagerConfig()
	managerCfg.WorkerCount = cfg.WorkerCount

	manager := NewManager(
		queue.NewConsumer(rdb.Client),
		NewHandler(notifier, cache.NewFeedCache(rdb.Client, cfg.FeedCacheTTL)),
		managerCfg,
	)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	<-ctx.Done()
	manager.Stop()
	return nil
}
