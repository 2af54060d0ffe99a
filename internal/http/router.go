package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/nsg-intelligence-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nsg-intelligence-backend/internal/http/middleware"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware
	// GateReaders backs the onboarding guard on content routes.
	GateReaders httpMW.GateReaders

	HealthHandler      *httpH.HealthHandler
	OnboardingHandler  *httpH.OnboardingHandler
	CalibrationHandler *httpH.CalibrationHandler
	LibraryHandler     *httpH.LibraryHandler
	RealtimeHandler    *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Onboarding gate + preferences
		if cfg.OnboardingHandler != nil {
			protected.GET("/onboarding-status", cfg.OnboardingHandler.GetStatus)
			protected.GET("/onboarding/gate", cfg.OnboardingHandler.GetGate)
			protected.GET("/preferences", cfg.OnboardingHandler.GetPreferences)
			protected.PUT("/preferences", cfg.OnboardingHandler.PutPreferences)
		}

		// Calibration wizard
		if cfg.CalibrationHandler != nil {
			protected.POST("/calibration/session", cfg.CalibrationHandler.StartSession)
			protected.GET("/calibration/session", cfg.CalibrationHandler.GetSession)
			protected.POST("/calibration/session/answers", cfg.CalibrationHandler.SubmitAnswer)
			protected.POST("/calibration/session/restart", cfg.CalibrationHandler.Restart)
			protected.POST("/calibration/session/confirm", cfg.CalibrationHandler.Confirm)
		}

		// Gated content
		content := protected.Group("/")
		if cfg.GateReaders != nil && cfg.Log != nil {
			content.Use(httpMW.RequireOnboarding(cfg.Log, cfg.GateReaders, cfg.Metrics))
		}
		if cfg.LibraryHandler != nil {
			content.GET("/library", cfg.LibraryHandler.List)
		}
	}

	return r
}
