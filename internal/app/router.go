package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/nsg-intelligence-backend/internal/http"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, serviceset Services, metrics *observability.Metrics) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:                log,
		ServiceName:        cfg.ServiceName,
		CORSOrigins:        cfg.CORSOrigins,
		Metrics:            metrics,
		AuthMiddleware:     middleware.Auth,
		GateReaders:        serviceset.Onboarding,
		HealthHandler:      handlers.Health,
		OnboardingHandler:  handlers.Onboarding,
		CalibrationHandler: handlers.Calibration,
		LibraryHandler:     handlers.Library,
		RealtimeHandler:    handlers.Realtime,
	})
}
