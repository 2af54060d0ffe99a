package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Onboarding  services.OnboardingService
	Calibration services.CalibrationService
	Library     services.LibraryService
	Notifier    services.PreferencesNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, emit realtime.Emitter, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	notify := services.NewPreferencesNotifier(emit)
	onboarding := services.NewOnboardingService(db, log, reposet.OnboardingStatus, reposet.StrategyPreferences, notify, metrics)
	calibration, err := services.NewCalibrationService(log, onboarding, notify, metrics, services.CalibrationConfig{
		MaxSessions: cfg.SessionMaxCount,
		SessionTTL:  cfg.SessionTTL,
		TypingDelay: cfg.TypingDelay,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init calibration service: %w", err)
	}

	return Services{
		Auth:        services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL),
		Onboarding:  onboarding,
		Calibration: calibration,
		Library:     services.NewLibraryService(log, reposet.LibraryItem),
		Notifier:    notify,
	}, nil
}
