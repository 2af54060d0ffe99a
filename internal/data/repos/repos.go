package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos/library"
	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos/user"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type OnboardingStatusRepo = user.OnboardingStatusRepo
type StrategyPreferencesRepo = user.StrategyPreferencesRepo
type LibraryItemRepo = library.LibraryItemRepo

func NewOnboardingStatusRepo(db *gorm.DB, log *logger.Logger) OnboardingStatusRepo {
	return user.NewOnboardingStatusRepo(db, log)
}

func NewStrategyPreferencesRepo(db *gorm.DB, log *logger.Logger) StrategyPreferencesRepo {
	return user.NewStrategyPreferencesRepo(db, log)
}

func NewLibraryItemRepo(db *gorm.DB, log *logger.Logger) LibraryItemRepo {
	return library.NewLibraryItemRepo(db, log)
}
