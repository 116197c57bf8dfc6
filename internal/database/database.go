package database

import (
	"fmt"
	"log"
	"time"

	"peerform/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Connect opens the pooled connection to the PeerForm Postgres database.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Feed enrichment and leaderboard ranking both fan out queries.
	db.SetMaxOpenConns(max(cfg.FeedFanout+cfg.LeaderboardFanout, 10))
	db.SetMaxIdleConns(cfg.FeedFanout)
	db.SetConnMaxIdleTime(5 * time.Minute)

	log.Println("Connected to database successfully")
	return db, nil
}
