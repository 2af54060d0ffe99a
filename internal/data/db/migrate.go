package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// defaultLibrary is the starter catalogue shown once onboarding is complete.
var defaultLibrary = []types.LibraryItem{
	{Title: "Fundamentos del posicionamiento estratégico", Kind: "video", Position: 1},
	{Title: "Cómo leer tu mercado en 30 minutos", Kind: "guide", Position: 2},
	{Title: "Cuaderno de decisiones trimestrales", Kind: "workbook", Position: 3},
	{Title: "Delegar sin perder el control", Kind: "video", Position: 4},
	{Title: "Mapa de fricciones operativas", Kind: "guide", Position: 5},
}

// SeedLibrary inserts the starter catalogue. Existing titles are left alone.
func SeedLibrary(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	for _, item := range defaultLibrary {
		row := item
		var count int64
		if err := db.WithContext(ctx).Model(&types.LibraryItem{}).Where("title = ?", row.Title).Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("check library item %q: %w", row.Title, err)
		}
		if count > 0 {
			continue
		}
		row.ID = uuid.New()
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return inserted, fmt.Errorf("seed library item %q: %w", row.Title, err)
		}
		inserted++
	}
	return inserted, nil
}
