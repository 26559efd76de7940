package preference

import (
	"context"
	"testing"

	"github.com/wshinigamic/wtg-backend/internal/data/repos/testutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
)

func TestWishlistRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewWishlistRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	profile := testutil.SeedProfile(t, ctx, tx)
	product := testutil.SeedProduct(t, ctx, tx, "coat")
	v1 := testutil.SeedVariant(t, ctx, tx, product.ID)
	v2 := testutil.SeedVariant(t, ctx, tx, product.ID)

	first, err := repo.Add(dbc, profile.ID, v1.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	again, err := repo.Add(dbc, profile.ID, v1.ID)
	if err != nil {
		t.Fatalf("Add (again): %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("Add: expected idempotent insert, got %s vs %s", again.ID, first.ID)
	}
	if _, err := repo.Add(dbc, profile.ID, v2.ID); err != nil {
		t.Fatalf("Add v2: %v", err)
	}

	items, err := repo.ListByProfile(dbc, profile.ID)
	if err != nil || len(items) != 2 {
		t.Fatalf("ListByProfile: got=%d err=%v", len(items), err)
	}

	removed, err := repo.Remove(dbc, profile.ID, v1.ID)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
	removed, err = repo.Remove(dbc, profile.ID, v1.ID)
	if err != nil || removed {
		t.Fatalf("Remove (again): removed=%v err=%v", removed, err)
	}
}
