package repos

import (
	"gorm.io/gorm"

	"github.com/wshinigamic/wtg-backend/internal/data/repos/catalog"
	"github.com/wshinigamic/wtg-backend/internal/data/repos/preference"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

type ProfileRepo = preference.ProfileRepo
type DislikedColorRepo = preference.DislikedColorRepo
type ScoreRepo = preference.ScoreRepo
type WishlistRepo = preference.WishlistRepo

type ColorScoreRow = preference.ColorScoreRow
type HistoryRow = preference.HistoryRow

type ProductRepo = catalog.ProductRepo
type ProductColorRepo = catalog.ProductColorRepo
type VariantRepo = catalog.VariantRepo

// Repos groups every repository the services depend on.
type Repos struct {
	Profile  ProfileRepo
	Dislike  DislikedColorRepo
	Score    ScoreRepo
	Wishlist WishlistRepo

	Product      ProductRepo
	ProductColor ProductColorRepo
	Variant      VariantRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Profile:  preference.NewProfileRepo(db, log),
		Dislike:  preference.NewDislikedColorRepo(db, log),
		Score:    preference.NewScoreRepo(db, log),
		Wishlist: preference.NewWishlistRepo(db, log),

		Product:      catalog.NewProductRepo(db, log),
		ProductColor: catalog.NewProductColorRepo(db, log),
		Variant:      catalog.NewVariantRepo(db, log),
	}
}
