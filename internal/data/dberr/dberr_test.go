package dberr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"not found", gorm.ErrRecordNotFound, errs.CodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), errs.CodeNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, errs.CodeConflict},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, errs.CodeConsistency},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, errs.CodeConsistency},
		{"sqlite unique", errors.New("UNIQUE constraint failed: product.slug"), errs.CodeConflict},
		{"sqlite locked", errors.New("database is locked"), errs.CodeConsistency},
		{"canceled", context.Canceled, errs.CodeInternal},
		{"other", errors.New("boom"), errs.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Map("op", tc.err)
			if errs.CodeOf(got) != tc.want {
				t.Fatalf("Map: want=%s got=%s (%v)", tc.want, errs.CodeOf(got), got)
			}
		})
	}
}

func TestMapPassesCodedAndNil(t *testing.T) {
	if Map("op", nil) != nil {
		t.Fatalf("Map(nil) should be nil")
	}
	coded := errs.Consistency("scores.update", "stale row")
	if got := Map("other", coded); got != coded {
		t.Fatalf("coded errors should pass through unchanged")
	}
}
