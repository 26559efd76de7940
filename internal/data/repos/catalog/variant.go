package catalog

import (

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type VariantRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ProductVariant, error)
}

type variantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVariantRepo(db *gorm.DB, baseLog *logger.Logger) VariantRepo {
	return &variantRepo{db: db, log: baseLog.With("repo", "VariantRepo")}
}

func (r *variantRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ProductVariant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProductVariant
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("variant.get_by_ids", err)
	}
	return out, nil
}
