package preference

import (

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type WishlistRepo interface {
	Add(dbc dbctx.Context, profileID, variantID uuid.UUID) (*types.WishlistVariant, error)
	Remove(dbc dbctx.Context, profileID, variantID uuid.UUID) (bool, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.WishlistVariant, error)
}

type wishlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWishlistRepo(db *gorm.DB, baseLog *logger.Logger) WishlistRepo {
	return &wishlistRepo{db: db, log: baseLog.With("repo", "WishlistRepo")}
}

func (r *wishlistRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

// Add is idempotent; adding a variant twice returns the original row.
func (r *wishlistRepo) Add(dbc dbctx.Context, profileID, variantID uuid.UUID) (*types.WishlistVariant, error) {
	t := r.tx(dbc).WithContext(dbc.Ctx)
	row := &types.WishlistVariant{ProfileID: profileID, VariantID: variantID}
	if err := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "variant_id"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return nil, dberr.Map("wishlist.add", err)
	}
	var out types.WishlistVariant
	if err := t.Where("profile_id = ? AND variant_id = ?", profileID, variantID).First(&out).Error; err != nil {
		return nil, dberr.Map("wishlist.add", err)
	}
	return &out, nil
}

func (r *wishlistRepo) Remove(dbc dbctx.Context, profileID, variantID uuid.UUID) (bool, error) {
	res := r.tx(dbc).WithContext(dbc.Ctx).
		Where("profile_id = ? AND variant_id = ?", profileID, variantID).
		Delete(&types.WishlistVariant{})
	if res.Error != nil {
		return false, dberr.Map("wishlist.remove", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *wishlistRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.WishlistVariant, error) {
	var out []*types.WishlistVariant
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, dberr.Map("wishlist.list", err)
	}
	return out, nil
}
