package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name string    `gorm:"not null" json:"name"`
}

func (Channel) TableName() string { return "channel" }

func (c *Channel) BeforeCreate(tx *gorm.DB) error { return assignID(&c.ID) }

// ProductChannelListing controls product visibility per channel.
type ProductChannelListing struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_channel_listing_product_channel" json:"product_id"`
	ChannelID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_channel_listing_product_channel;index" json:"channel_id"`
	VisibleInListings bool      `gorm:"not null;default:false" json:"visible_in_listings"`
}

func (ProductChannelListing) TableName() string { return "product_channel_listing" }

func (l *ProductChannelListing) BeforeCreate(tx *gorm.DB) error { return assignID(&l.ID) }
