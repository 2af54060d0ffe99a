package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
)

func SeedLibraryItem(tb testing.TB, ctx context.Context, tx *gorm.DB, title, kind string, position int) *types.LibraryItem {
	tb.Helper()
	item := &types.LibraryItem{
		ID:       uuid.New(),
		Title:    title,
		Kind:     kind,
		URL:      "https://example.com/" + uuid.NewString(),
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed library item: %v", err)
	}
	return item
}
