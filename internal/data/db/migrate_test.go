package db

import (
	"context"
	"testing"

	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func TestSQLiteMigrateAndSeed(t *testing.T) {
	svc, err := NewService(Config{Driver: "sqlite", DSN: "file:migrate_test?mode=memory&cache=shared"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Driver() != "sqlite" {
		t.Fatalf("driver: got %q", svc.Driver())
	}
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}

	ctx := context.Background()
	n, err := SeedLibrary(ctx, svc.DB())
	if err != nil {
		t.Fatalf("SeedLibrary: %v", err)
	}
	if n != len(defaultLibrary) {
		t.Fatalf("SeedLibrary: inserted %d, want %d", n, len(defaultLibrary))
	}
	n, err = SeedLibrary(ctx, svc.DB())
	if err != nil {
		t.Fatalf("SeedLibrary (again): %v", err)
	}
	if n != 0 {
		t.Fatalf("SeedLibrary should be idempotent, inserted %d", n)
	}

	var count int64
	if err := svc.DB().Model(&types.LibraryItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if int(count) != len(defaultLibrary) {
		t.Fatalf("count: got %d", count)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewService(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := NewService(Config{Driver: "postgres"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing postgres dsn")
	}
}
