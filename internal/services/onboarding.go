package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos"
	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/observability"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type StoredPreferences struct {
	Preferences calibration.Snapshot `json:"preferences"`
	Version     int                  `json:"version"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// OnboardingService is the backend side of the completion gate. Every read goes
// to the database; nothing is cached.
type OnboardingService interface {
	Status(ctx context.Context, userID uuid.UUID) (gate.Status, error)
	Preferences(ctx context.Context, userID uuid.UUID) (*StoredPreferences, error)
	SavePreferences(ctx context.Context, userID uuid.UUID, snap calibration.Snapshot) (*StoredPreferences, gate.Status, error)
	ReaderFor(userID uuid.UUID) gate.StatusReader
}

type onboardingService struct {
	db         *gorm.DB
	log        *logger.Logger
	statusRepo repos.OnboardingStatusRepo
	prefsRepo  repos.StrategyPreferencesRepo
	notify     PreferencesNotifier
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewOnboardingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	statusRepo repos.OnboardingStatusRepo,
	prefsRepo repos.StrategyPreferencesRepo,
	notify PreferencesNotifier,
	metrics *observability.Metrics,
) OnboardingService {
	return &onboardingService{
		db:         db,
		log:        baseLog.With("service", "OnboardingService"),
		statusRepo: statusRepo,
		prefsRepo:  prefsRepo,
		notify:     notify,
		metrics:    metrics,
		now:        time.Now,
	}
}

func (s *onboardingService) Status(ctx context.Context, userID uuid.UUID) (gate.Status, error) {
	if userID == uuid.Nil {
		return gate.Status{}, ErrUnauthenticated
	}
	row, err := s.statusRepo.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return gate.Status{}, fmt.Errorf("load onboarding status: %w", err)
	}
	if row == nil {
		return gate.Status{}, nil
	}
	return gate.Status{OnboardingCompleted: row.OnboardingCompleted, CompletedAt: row.CompletedAt}, nil
}

// Preferences returns nil, nil when nothing has been committed yet.
func (s *onboardingService) Preferences(ctx context.Context, userID uuid.UUID) (*StoredPreferences, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	row, err := s.prefsRepo.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	var snap calibration.Snapshot
	if err := json.Unmarshal(row.PrefsJSON, &snap); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return &StoredPreferences{Preferences: snap, Version: row.Version, UpdatedAt: row.UpdatedAt}, nil
}

// SavePreferences writes the snapshot and flips the gate in one transaction,
// then publishes the committed copy.
func (s *onboardingService) SavePreferences(ctx context.Context, userID uuid.UUID, snap calibration.Snapshot) (*StoredPreferences, gate.Status, error) {
	if userID == uuid.Nil {
		return nil, gate.Status{}, ErrUnauthenticated
	}
	if err := snap.Validate(); err != nil {
		return nil, gate.Status{}, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, gate.Status{}, fmt.Errorf("encode preferences: %w", err)
	}

	var (
		row    *types.StrategyPreferences
		status *types.OnboardingStatus
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row = &types.StrategyPreferences{UserID: userID, PrefsJSON: datatypes.JSON(raw)}
		if err := s.prefsRepo.Upsert(dbc, row); err != nil {
			return fmt.Errorf("upsert preferences: %w", err)
		}
		st, err := s.statusRepo.MarkCompleted(dbc, userID, s.now())
		if err != nil {
			return fmt.Errorf("mark onboarding completed: %w", err)
		}
		status = st
		return nil
	})
	if err != nil {
		s.log.Error("save preferences failed", "user_id", userID, "error", err)
		return nil, gate.Status{}, err
	}

	out := &StoredPreferences{Preferences: snap, Version: row.Version, UpdatedAt: row.UpdatedAt}
	gs := gate.Status{OnboardingCompleted: status.OnboardingCompleted, CompletedAt: status.CompletedAt}
	s.log.Info("strategy preferences committed", "user_id", userID, "version", row.Version, "fields", snap.Len())

	if s.notify != nil {
		s.notify.PreferencesUpdated(ctx, userID, snap, row.Version)
		if row.Version == 1 {
			s.notify.OnboardingCompleted(ctx, userID, gs.CompletedAt)
		}
	}
	return out, gs, nil
}

func (s *onboardingService) ReaderFor(userID uuid.UUID) gate.StatusReader {
	return gate.StatusReaderFunc(func(ctx context.Context) (gate.Status, error) {
		return s.Status(ctx, userID)
	})
}
