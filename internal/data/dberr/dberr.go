package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
)

// Map maps infrastructure failures into coded errors. Already coded errors
// pass through untouched.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(errs.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return errs.Wrap(errs.CodeConflict, op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return errs.Wrap(errs.CodeConsistency, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key value"):
		return errs.Wrap(errs.CodeConflict, op, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "could not serialize access"):
		return errs.Wrap(errs.CodeConsistency, op, err)
	}
	return errs.Wrap(errs.CodeInternal, op, err)
}
