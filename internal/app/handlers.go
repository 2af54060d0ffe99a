package app

import (
	httpH "github.com/yungbote/nsg-intelligence-backend/internal/http/handlers"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Onboarding  *httpH.OnboardingHandler
	Calibration *httpH.CalibrationHandler
	Library     *httpH.LibraryHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *realtime.SSEHub, metrics *observability.Metrics, checks map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(checks),
		Onboarding:  httpH.NewOnboardingHandler(log, serviceset.Onboarding, metrics),
		Calibration: httpH.NewCalibrationHandler(log, serviceset.Calibration),
		Library:     httpH.NewLibraryHandler(log, serviceset.Library),
		Realtime:    httpH.NewRealtimeHandler(log, hub),
	}
}
