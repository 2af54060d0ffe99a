package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

func TestNewWiresSqliteApp(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:app_wiring?mode=memory&cache=shared")
	cfg, err := LoadConfig(nil, NewViper(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	a, err := New(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d %s", rec.Code, rec.Body.String())
	}

	items, err := a.Services.Library.List(context.Background(), "", 0)
	if err != nil || len(items) == 0 {
		t.Fatalf("library should be seeded: %d err=%v", len(items), err)
	}

	token, err := a.Services.Auth.IssueAccessToken(uuid.New(), time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/library", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("library should be gated: %d", rec.Code)
	}
}
