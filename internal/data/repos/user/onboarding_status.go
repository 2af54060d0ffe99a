package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type OnboardingStatusRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.OnboardingStatus, error)
	MarkCompleted(dbc dbctx.Context, userID uuid.UUID, at time.Time) (*types.OnboardingStatus, error)
	Reset(dbc dbctx.Context, userID uuid.UUID) error
}

type onboardingStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOnboardingStatusRepo(db *gorm.DB, baseLog *logger.Logger) OnboardingStatusRepo {
	return &onboardingStatusRepo{db: db, log: baseLog.With("repo", "OnboardingStatusRepo")}
}

// GetByUserID returns nil, nil when the user has no row yet.
func (r *onboardingStatusRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.OnboardingStatus, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.OnboardingStatus
	if err := t.Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// MarkCompleted sets the flag. completed_at keeps its first value across recalibrations.
func (r *onboardingStatusRepo) MarkCompleted(dbc dbctx.Context, userID uuid.UUID, at time.Time) (*types.OnboardingStatus, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil, gorm.ErrMissingWhereClause
	}
	existing, err := r.GetByUserID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, userID)
	if err != nil {
		return nil, err
	}
	at = at.UTC()
	row := &types.OnboardingStatus{
		ID:                  uuid.New(),
		UserID:              userID,
		OnboardingCompleted: true,
		CompletedAt:         &at,
		UpdatedAt:           at,
	}
	if existing != nil && existing.OnboardingCompleted && existing.CompletedAt != nil {
		row.CompletedAt = existing.CompletedAt
	}
	err = t.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"onboarding_completed",
				"completed_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	if existing != nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}
	return row, nil
}

// Reset clears the flag. Used by operators re-running onboarding for a user.
func (r *onboardingStatusRepo) Reset(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil
	}
	return t.
		Model(&types.OnboardingStatus{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"onboarding_completed": false,
			"completed_at":         nil,
			"updated_at":           time.Now().UTC(),
		}).Error
}
