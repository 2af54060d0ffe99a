package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/db"
	apphttp "github.com/yungbote/nsg-intelligence-backend/internal/http"
	httpH "github.com/yungbote/nsg-intelligence-backend/internal/http/handlers"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime"
	"github.com/yungbote/nsg-intelligence-backend/internal/realtime/bus"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	dbService *db.Service
	bus       bus.Bus
	otelStop  func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelStop := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     Version,
	}))

	dbService, err := db.NewService(db.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbService.DB()
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			_ = dbService.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	if cfg.SeedLibrary {
		if n, err := db.SeedLibrary(ctx, theDB); err != nil {
			log.Warn("library seed failed (continuing)", "error", err)
		} else if n > 0 {
			log.Info("library seeded", "inserted", n)
		}
	}

	metrics, err := observability.New(nil)
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	hub := realtime.NewSSEHub(log)
	var emit realtime.Emitter = &realtime.HubEmitter{Hub: hub}
	var rbus bus.Bus
	if cfg.RedisAddr != "" {
		rb, err := bus.NewRedisBus(bus.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		}, log)
		if err != nil {
			_ = dbService.Close()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		rbus = rb
		emit = &realtime.BusEmitter{Bus: rbus, Log: log}
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, emit, metrics)
	if err != nil {
		if rbus != nil {
			_ = rbus.Close()
		}
		_ = dbService.Close()
		return nil, err
	}

	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := theDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rbus != nil {
		checks["redis"] = rbus.Ping
	}
	handlerset := wireHandlers(log, serviceset, hub, metrics, checks)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, serviceset, metrics)

	return &App{
		Log:       log,
		DB:        theDB,
		Router:    router,
		Cfg:       cfg,
		Repos:     reposet,
		Services:  serviceset,
		SSEHub:    hub,
		Metrics:   metrics,
		dbService: dbService,
		bus:       rbus,
		otelStop:  otelStop,
	}, nil
}

// Run serves HTTP and the background loops until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, a.Cfg.MetricsInterval)
	if a.bus != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr, a.Cfg.MetricsInterval)
		if err := a.bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start redis forwarder: %w", err)
		}
	}

	g.Go(func() error {
		srv := &apphttp.Server{Engine: a.Router}
		a.Log.Info("http server listening", "addr", a.Cfg.Addr)
		return srv.Run(ctx, a.Cfg.Addr, a.Cfg.DrainTimeout)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Calibration != nil {
		a.Services.Calibration.Close()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Log.Warn("redis bus close failed", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelStop(ctx)
	}
	a.Log.Sync()
}
