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

type StrategyPreferencesRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StrategyPreferences, error)
	Upsert(dbc dbctx.Context, row *types.StrategyPreferences) error
}

type strategyPreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrategyPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) StrategyPreferencesRepo {
	return &strategyPreferencesRepo{db: db, log: baseLog.With("repo", "StrategyPreferencesRepo")}
}

func (r *strategyPreferencesRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.StrategyPreferences, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.StrategyPreferences
	if err := t.Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// Upsert replaces the stored snapshot wholesale and bumps Version.
func (r *strategyPreferencesRepo) Upsert(dbc dbctx.Context, row *types.StrategyPreferences) error {
	t := dbc.DB(r.db)
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	existing, err := r.GetByUserID(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, row.UserID)
	if err != nil {
		return err
	}
	row.ID = uuid.New()
	row.Version = 1
	if existing != nil {
		row.Version = existing.Version + 1
	}
	row.UpdatedAt = time.Now().UTC()
	err = t.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"prefs_json",
				"version",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return err
	}
	if existing != nil {
		row.ID = existing.ID
	}
	return nil
}
