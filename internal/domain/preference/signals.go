package preference

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DislikedProductColor is an append-only dislike record.
type DislikedProductColor struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_disliked_product_color_profile_color_at" json:"profile_id"`
	ProductColorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_disliked_product_color_profile_color_at" json:"product_color_id"`
	CreatedAt      time.Time `gorm:"not null;uniqueIndex:idx_disliked_product_color_profile_color_at" json:"created_at"`
}

func (DislikedProductColor) TableName() string { return "disliked_product_color" }

func (d *DislikedProductColor) BeforeCreate(tx *gorm.DB) error { return assignID(&d.ID) }

type WishlistVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_variant_profile_variant" json:"profile_id"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_variant_profile_variant" json:"variant_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WishlistVariant) TableName() string { return "wishlist_variant" }

func (w *WishlistVariant) BeforeCreate(tx *gorm.DB) error { return assignID(&w.ID) }
