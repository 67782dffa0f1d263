package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	BackendURL   string
	SentimentURL string

	UpstreamTimeout      time.Duration
	UpstreamRPS          int
	SentimentTimeout     time.Duration
	SentimentConcurrency int
	ReviewInsertPath     string

	SessionTTL    time.Duration
	SecureCookies bool
	SeedOnStart   bool
}

func Load() Config {
	// optional; a missing .env is normal outside local dev
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8000"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/dealership?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		BackendURL:   env("backend_url", "http://localhost:3030"),
		SentimentURL: env("sentiment_analyzer_url", "http://localhost:5050/"),

		UpstreamTimeout:      time.Duration(atoi("UPSTREAM_TIMEOUT_MS", 10000)) * time.Millisecond,
		UpstreamRPS:          atoi("UPSTREAM_RPS", 20),
		SentimentTimeout:     time.Duration(atoi("SENTIMENT_TIMEOUT_MS", 5000)) * time.Millisecond,
		SentimentConcurrency: atoi("SENTIMENT_CONCURRENCY", 4),
		ReviewInsertPath:     env("REVIEW_INSERT_PATH", "/insert_review"),

		SessionTTL:    time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		SecureCookies: env("SECURE_COOKIES", "false") == "true",
		SeedOnStart:   env("SEED_ON_START", "true") == "true",
	}
	if c.SentimentConcurrency <= 0 {
		c.SentimentConcurrency = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
