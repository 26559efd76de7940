package app

import (
	"strings"
	"time"

	"github.com/wshinigamic/wtg-backend/internal/data/db"
	"github.com/wshinigamic/wtg-backend/internal/platform/envutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type Config struct {
	Port         string
	JWTSecretKey string
	CORSOrigins  []string

	DB db.Config

	ScoringEndpoint       string
	ScoringTimeout        time.Duration
	ScoringBreakerFailure int
	ScoringBreakerOpenFor time.Duration

	RedisAddr      string
	IdempotencyTTL time.Duration

	FeedCandidateLimit int
	FeedMaxPageSize    int
	LazyScoreRows      bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:         envutil.String("PORT", "8080", log),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		CORSOrigins:  splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			SQLitePath:       envutil.String("SQLITE_PATH", "", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "wtg", log),
		},

		ScoringEndpoint:       envutil.String("SCORING_SERVICE_ENDPOINT", "http://localhost:8000/scores", log),
		ScoringTimeout:        envutil.Seconds("SCORING_TIMEOUT_SECONDS", 10*time.Second, log),
		ScoringBreakerFailure: envutil.Int("SCORING_BREAKER_FAILURES", 5, log),
		ScoringBreakerOpenFor: envutil.Seconds("SCORING_BREAKER_OPEN_SECONDS", 30*time.Second, log),

		RedisAddr:      envutil.String("REDIS_ADDR", "", log),
		IdempotencyTTL: envutil.Seconds("IDEMPOTENCY_TTL_SECONDS", 10*time.Minute, log),

		FeedCandidateLimit: envutil.Int("FEED_CANDIDATE_LIMIT", 2000, log),
		FeedMaxPageSize:    envutil.Int("FEED_MAX_PAGE_SIZE", 100, log),
		LazyScoreRows:      envutil.Bool("PREFERENCE_LAZY_SCORE_ROWS", true, log),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
