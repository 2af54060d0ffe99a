package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
)

func TestStrategyPreferencesRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewStrategyPreferencesRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	userID := uuid.New()

	row := &types.StrategyPreferences{
		UserID:    userID,
		PrefsJSON: datatypes.JSON([]byte(`{"depth":"Esencial","numerology":false}`)),
	}
	if err := repo.Upsert(dbc, row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if row.Version != 1 {
		t.Fatalf("Upsert: version=%d, want 1", row.Version)
	}
	firstID := row.ID

	next := &types.StrategyPreferences{
		UserID:    userID,
		PrefsJSON: datatypes.JSON([]byte(`{"depth":"Experto","numerology":true}`)),
	}
	if err := repo.Upsert(dbc, next); err != nil {
		t.Fatalf("Upsert (replace): %v", err)
	}
	if next.ID != firstID {
		t.Fatalf("Upsert (replace): id %s, want %s", next.ID, firstID)
	}

	got, err := repo.GetByUserID(dbc, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got == nil {
		t.Fatalf("GetByUserID: expected row")
	}
	if got.Version != 2 {
		t.Fatalf("GetByUserID: version=%d, want 2", got.Version)
	}
	if string(got.PrefsJSON) != `{"depth":"Experto","numerology":true}` {
		t.Fatalf("GetByUserID: prefs=%s", string(got.PrefsJSON))
	}

	other, err := repo.GetByUserID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByUserID (other): %v", err)
	}
	if other != nil {
		t.Fatalf("GetByUserID (other): expected nil")
	}
}
