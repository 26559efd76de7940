package preference

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wshinigamic/wtg-backend/internal/data/repos/testutil"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
)

func TestDislikedColorRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDislikedColorRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	profile := testutil.SeedProfile(t, ctx, tx)
	product := testutil.SeedProduct(t, ctx, tx, "shirt")
	c1 := testutil.SeedColor(t, ctx, tx, product.ID, nil)
	c2 := testutil.SeedColor(t, ctx, tx, product.ID, nil)

	rows, err := repo.Record(dbc, profile.ID, []uuid.UUID{c1.ID, c2.ID, c1.ID})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Record: expected duplicates collapsed to 2 rows, got %d", len(rows))
	}
	if !rows[0].CreatedAt.Equal(rows[1].CreatedAt) {
		t.Fatalf("Record: expected a shared timestamp")
	}

	empty, err := repo.Record(dbc, profile.ID, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("Record (empty): got=%v err=%v", empty, err)
	}

	n, err := repo.CountByProfile(dbc, profile.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountByProfile: got=%d err=%v", n, err)
	}

	page, err := repo.ListByProfile(dbc, profile.ID, 1, 0)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(page) != 1 || page[0].ID != rows[1].ID {
		t.Fatalf("ListByProfile: expected newest row first, got %+v", page)
	}

	got, err := repo.GetByID(dbc, profile.ID, rows[0].ID)
	if err != nil || got.ProductColorID != c1.ID {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	other := testutil.SeedProfile(t, ctx, tx)
	if _, err := repo.GetByID(dbc, other.ID, rows[0].ID); !errs.IsCode(err, errs.CodeNotFound) {
		t.Fatalf("GetByID (other profile): expected not_found, got %v", err)
	}
}
