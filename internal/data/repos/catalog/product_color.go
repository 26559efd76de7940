package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/dberr"
	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/platform/dbctx"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type ProductColorRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ProductColor, error)
	ListByProduct(dbc dbctx.Context, productID uuid.UUID, channelSlug string) ([]*types.ProductColor, error)
	ClustersForProducts(dbc dbctx.Context, productIDs []uuid.UUID) ([]int, error)
}

type productColorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductColorRepo(db *gorm.DB, baseLog *logger.Logger) ProductColorRepo {
	return &productColorRepo{db: db, log: baseLog.With("repo", "ProductColorRepo")}
}

func (r *productColorRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *productColorRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ProductColor, error) {
	var out []*types.ProductColor
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, dberr.Map("product_color.get_by_ids", err)
	}
	return out, nil
}

// ListByProduct returns the product's colors in primary key order. With a
// channel slug only colors listed in that channel qualify.
func (r *productColorRepo) ListByProduct(dbc dbctx.Context, productID uuid.UUID, channelSlug string) ([]*types.ProductColor, error) {
	var out []*types.ProductColor
	q := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.ProductColor{}).
		Select("product_color.*").
		Where("product_color.product_id = ?", productID)
	if slug := strings.TrimSpace(channelSlug); slug != "" {
		q = q.Joins("JOIN product_color_channel_listing ON product_color_channel_listing.product_color_id = product_color.id").
			Joins("JOIN channel ON channel.id = product_color_channel_listing.channel_id").
			Where("channel.slug = ?", slug)
	}
	if err := q.Order("product_color.id ASC").Find(&out).Error; err != nil {
		return nil, dberr.Map("product_color.list_by_product", err)
	}
	return out, nil
}

// ClustersForProducts returns the distinct clusters assigned to any color of
// productIDs, ascending.
func (r *productColorRepo) ClustersForProducts(dbc dbctx.Context, productIDs []uuid.UUID) ([]int, error) {
	out := []int{}
	if len(productIDs) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&types.ProductColor{}).
		Distinct("cluster").
		Where("product_id IN ? AND cluster IS NOT NULL", productIDs).
		Order("cluster ASC").
		Pluck("cluster", &out).Error; err != nil {
		return nil, dberr.Map("product_color.clusters", err)
	}
	return out, nil
}
