package preference

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type DislikedColorRepo interface {
	Record(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) ([]*types.DislikedProductColor, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID, limit, offset int) ([]*types.DislikedProductColor, error)
	CountByProfile(dbc dbctx.Context, profileID uuid.UUID) (int64, error)
	GetByID(dbc dbctx.Context, profileID, id uuid.UUID) (*types.DislikedProductColor, error)
}

type dislikedColorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDislikedColorRepo(db *gorm.DB, baseLog *logger.Logger) DislikedColorRepo {
	return &dislikedColorRepo{db: db, log: baseLog.With("repo", "DislikedColorRepo")}
}

func (r *dislikedColorRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

// Record appends one dislike per distinct color id, all stamped with the
// same time. Catalog existence is the caller's concern.
func (r *dislikedColorRepo) Record(dbc dbctx.Context, profileID uuid.UUID, colorIDs []uuid.UUID) ([]*types.DislikedProductColor, error) {
	ids := dedupe(colorIDs)
	if len(ids) == 0 {
		return []*types.DislikedProductColor{}, nil
	}
	now := time.Now().UTC()
	rows := make([]*types.DislikedProductColor, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, &types.DislikedProductColor{ProfileID: profileID, ProductColorID: id, CreatedAt: now})
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, dberr.Map("dislike.record", err)
	}
	return rows, nil
}

func (r *dislikedColorRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID, limit, offset int) ([]*types.DislikedProductColor, error) {
	var out []*types.DislikedProductColor
	q := r.tx(dbc).WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, dberr.Map("dislike.list", err)
	}
	return out, nil
}

func (r *dislikedColorRepo) CountByProfile(dbc dbctx.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.DislikedProductColor{}).
		Where("profile_id = ?", profileID).
		Count(&n).Error; err != nil {
		return 0, dberr.Map("dislike.count", err)
	}
	return n, nil
}

func (r *dislikedColorRepo) GetByID(dbc dbctx.Context, profileID, id uuid.UUID) (*types.DislikedProductColor, error) {
	var row types.DislikedProductColor
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("dislike.get", "disliked product color not found")
		}
		return nil, dberr.Map("dislike.get", err)
	}
	return &row, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
