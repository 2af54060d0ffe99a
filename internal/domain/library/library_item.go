package library

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LibraryItem is a piece of education content behind the onboarding gate.
type LibraryItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Kind        string    `gorm:"column:kind;not null;index" json:"kind"` // "video" | "guide" | "workbook"
	URL         string    `gorm:"column:url" json:"url"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Position    int       `gorm:"column:position;not null;default:0;index" json:"position"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LibraryItem) TableName() string { return "library_item" }
