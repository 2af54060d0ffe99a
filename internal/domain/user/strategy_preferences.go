package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StrategyPreferences stores the committed calibration answers, one row per user.
// PrefsJSON holds the snapshot as {"entregable": "...", "numerology": false, ...}.
type StrategyPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	PrefsJSON datatypes.JSON `gorm:"column:prefs_json;type:jsonb;not null" json:"prefs_json"`
	// Version increments on every commit so readers can discard stale broadcasts.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StrategyPreferences) TableName() string { return "strategy_preferences" }
