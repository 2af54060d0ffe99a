package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type Repos struct {
	OnboardingStatus    repos.OnboardingStatusRepo
	StrategyPreferences repos.StrategyPreferencesRepo
	LibraryItem         repos.LibraryItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		OnboardingStatus:    repos.NewOnboardingStatusRepo(db, log),
		StrategyPreferences: repos.NewStrategyPreferencesRepo(db, log),
		LibraryItem:         repos.NewLibraryItemRepo(db, log),
	}
}
