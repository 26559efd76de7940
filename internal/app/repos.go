package app

import (
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/repos"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

func wireRepos(db *gorm.DB, log *logger.Logger) repos.Repos {
	log.Info("Wiring repos...")
	return repos.New(db, log)
}
