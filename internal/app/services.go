package app

import (
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	"github.com/wshinigamic/wtg-backend/internal/modules/feed"
	"github.com/wshinigamic/wtg-backend/internal/observability"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
	"github.com/wshinigamic/wtg-backend/internal/services"
)

type Services struct {
	ScoreUpdate services.ScoreUpdateEngine
	Preference  services.PreferenceService
	Feed        services.FeedService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	engine := services.NewScoreUpdateEngine(db, log, r.Score, r.ProductColor, clients.Scoring, metrics,
		services.ScoreUpdateOptions{CreateMissing: cfg.LazyScoreRows})

	return Services{
		ScoreUpdate: engine,
		Preference:  services.NewPreferenceService(db, log, r, engine),
		Feed: services.NewFeedService(log, r, metrics, services.FeedConfig{
			CandidateLimit: cfg.FeedCandidateLimit,
			MaxPageSize:    cfg.FeedMaxPageSize,
			Params:         feed.LoadParams(log),
		}),
	}
}
