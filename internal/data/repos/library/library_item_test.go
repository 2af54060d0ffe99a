package library

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/nsg-intelligence-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nsg-intelligence-backend/internal/domain"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/dbctx"
)

func TestLibraryItemRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	testutil.SeedLibraryItem(t, ctx, tx, "Tercero", "guide", 3)
	testutil.SeedLibraryItem(t, ctx, tx, "Primero", "video", 1)

	repo := NewLibraryItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	created, err := repo.Create(dbc, []*types.LibraryItem{{ID: uuid.New(), Title: "Segundo", Kind: "video", Position: 2}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 item, got %d", len(created))
	}

	all, err := repo.List(dbc, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Primero" || all[2].Title != "Tercero" {
		t.Fatalf("List: unexpected order %+v", all)
	}

	videos, err := repo.List(dbc, "video", 1)
	if err != nil {
		t.Fatalf("List (video): %v", err)
	}
	if len(videos) != 1 || videos[0].Title != "Primero" {
		t.Fatalf("List (video): unexpected %+v", videos)
	}
}
