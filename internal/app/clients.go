package app

import (
	"fmt"
	"strings"

	"github.com/wshinigamic/wtg-backend/internal/clients/redis"
	"github.com/wshinigamic/wtg-backend/internal/clients/scoring"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type Clients struct {
	Scoring     scoring.Client
	Idempotency redis.IdempotencyStore
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	failures := cfg.ScoringBreakerFailure
	if failures < 0 {
		failures = 0
	}
	deltas, err := scoring.New(log, scoring.Config{
		Endpoint:        cfg.ScoringEndpoint,
		Timeout:         cfg.ScoringTimeout,
		BreakerFailures: uint32(failures),
		BreakerOpenFor:  cfg.ScoringBreakerOpenFor,
		Metrics:         metrics,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init scoring client: %w", err)
	}

	// Redis is optional; without it writes are not deduplicated.
	var store redis.IdempotencyStore
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		s, err := redis.NewIdempotencyStore(cfg.RedisAddr, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis idempotency store: %w", err)
		}
		store = s
	} else {
		log.Warn("REDIS_ADDR not set; idempotency keys are ignored")
	}

	return Clients{Scoring: deltas, Idempotency: store}, nil
}

func (c Clients) Close() {
	if c.Idempotency != nil {
		_ = c.Idempotency.Close()
	}
}
