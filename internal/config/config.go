package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// DatabaseURL takes precedence over the discrete DB_* fields when set.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// RedisURL is optional. Without it the feed cache is disabled and
	// engagement events are not published.
	RedisURL string

	ServerPort string

	// JWTSecret verifies access tokens issued by the hosted auth service.
	JWTSecret string

	// Object storage. PublicURL is the base the buckets are served from,
	// e.g. https://<project>.supabase.co/storage/v1/object/public
	StoragePublicURL  string
	StorageSignedURLs bool
	StorageSignedTTL  time.Duration
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Endpoint        string

	FCMProjectID   string
	FCMClientEmail string
	FCMPrivateKey  string

	DeezerBaseURL   string
	DeezerRateLimit float64 // requests per second

	RequestTimeout time.Duration
	FeedFanout     int
	FeedCacheTTL   time.Duration

	// LeaderboardFanout bounds concurrent workout stats calls per ranking.
	LeaderboardFanout int

	WorkerCount int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   getEnv("DB_SSLMODE", "require"),

		RedisURL: os.Getenv("REDIS_URL"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StoragePublicURL:  strings.TrimSuffix(os.Getenv("STORAGE_PUBLIC_URL"), "/"),
		StorageSignedURLs: getBool("STORAGE_SIGNED_URLS", false),
		StorageSignedTTL:  getDuration("STORAGE_SIGNED_TTL", time.Hour),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Endpoint:        os.Getenv("R2_ENDPOINT"),

		FCMProjectID:   os.Getenv("FCM_PROJECT_ID"),
		FCMClientEmail: os.Getenv("FCM_CLIENT_EMAIL"),
		FCMPrivateKey:  os.Getenv("FCM_PRIVATE_KEY"),

		DeezerBaseURL:   getEnv("DEEZER_BASE_URL", "https://api.deezer.com"),
		DeezerRateLimit: getFloat("DEEZER_RATE_LIMIT", 8),

		RequestTimeout: getDuration("REQUEST_TIMEOUT", 12*time.Second),
		FeedFanout:     getInt("FEED_FANOUT", 16),
		FeedCacheTTL:   getDuration("FEED_CACHE_TTL", 30*time.Second),

		LeaderboardFanout: getInt("LEADERBOARD_FANOUT", 8),

		WorkerCount: getInt("WORKER_COUNT", 2),
	}, nil
}

// PushEnabled reports whether FCM credentials are present.
func (c *Config) PushEnabled() bool {
	return c.FCMProjectID != "" && c.FCMClientEmail != "" && c.FCMPrivateKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
