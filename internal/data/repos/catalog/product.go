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

type ProductRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	ListCandidateIDs(dbc dbctx.Context, channelSlug string, limit int) ([]uuid.UUID, error)
	FilterVisibleIDs(dbc dbctx.Context, ids []uuid.UUID, channelSlug string) ([]uuid.UUID, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, dberr.Map("product.get_by_ids", err)
	}
	return out, nil
}

func (r *productRepo) visible(q *gorm.DB, channelSlug string) *gorm.DB {
	slug := strings.TrimSpace(channelSlug)
	if slug == "" {
		return q
	}
	return q.Joins("JOIN product_channel_listing ON product_channel_listing.product_id = product.id").
		Joins("JOIN channel ON channel.id = product_channel_listing.channel_id").
		Where("channel.slug = ? AND product_channel_listing.visible_in_listings = ?", slug, true)
}

// ListCandidateIDs returns up to limit product ids, newest first. With a
// channel slug only products visible in that channel's listings qualify.
func (r *productRepo) ListCandidateIDs(dbc dbctx.Context, channelSlug string, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.visible(r.tx(dbc).WithContext(dbc.Ctx).Model(&types.Product{}), channelSlug).
		Order("product.created_at DESC").
		Order("product.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("product.id", &ids).Error; err != nil {
		return nil, dberr.Map("product.list_candidates", err)
	}
	return ids, nil
}

// FilterVisibleIDs keeps the ids that exist (and are visible in the channel,
// when given), preserving input order.
func (r *productRepo) FilterVisibleIDs(dbc dbctx.Context, ids []uuid.UUID, channelSlug string) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	var found []uuid.UUID
	q := r.visible(r.tx(dbc).WithContext(dbc.Ctx).Model(&types.Product{}), channelSlug).
		Where("product.id IN ?", ids)
	if err := q.Pluck("product.id", &found).Error; err != nil {
		return nil, dberr.Map("product.filter_visible", err)
	}
	ok := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		ok[id] = true
	}
	out := make([]uuid.UUID, 0, len(found))
	for _, id := range ids {
		if ok[id] {
			out = append(out, id)
			delete(ok, id)
		}
	}
	return out, nil
}
