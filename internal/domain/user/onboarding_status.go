package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OnboardingStatus is the persisted completion gate. It is the single source of
// truth for whether a user may see the education library.
type OnboardingStatus struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	OnboardingCompleted bool       `gorm:"column:onboarding_completed;not null;default:false" json:"onboarding_completed"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (OnboardingStatus) TableName() string { return "onboarding_status" }
