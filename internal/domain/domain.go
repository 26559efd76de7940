package domain

import (
	"github.com/wshinigamic/wtg-backend/internal/domain/catalog"
	"github.com/wshinigamic/wtg-backend/internal/domain/preference"
)

type (
	Product                    = catalog.Product
	ProductVariant             = catalog.ProductVariant
	Channel                    = catalog.Channel
	ProductChannelListing      = catalog.ProductChannelListing
	ProductColor               = catalog.ProductColor
	ProductColorChannelListing = catalog.ProductColorChannelListing

	PreferenceProfile    = preference.PreferenceProfile
	ProductScore         = preference.ProductScore
	ProductColorScore    = preference.ProductColorScore
	DislikedProductColor = preference.DislikedProductColor
	WishlistVariant      = preference.WishlistVariant
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&Product{},
		&ProductVariant{},
		&Channel{},
		&ProductChannelListing{},
		&ProductColor{},
		&ProductColorChannelListing{},

		&PreferenceProfile{},
		&ProductScore{},
		&ProductColorScore{},
		&DislikedProductColor{},
		&WishlistVariant{},
	}
}
