package catalog

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductColor is one color variant of a product. Cluster is assigned
// upstream and may be unset; unclustered colors never reach the feed.
type ProductColor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_product_color" json:"product_id"`
	ColorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_product_color" json:"color_id"`

	NeuralRepresentation []byte `gorm:"column:neural_representation" json:"-"`
	Cluster              *int   `gorm:"index" json:"cluster,omitempty"`

	Metadata        datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	PrivateMetadata datatypes.JSON `gorm:"type:jsonb" json:"-"`
}

func (ProductColor) TableName() string { return "product_color" }

func (c *ProductColor) BeforeCreate(tx *gorm.DB) error { return assignID(&c.ID) }

type ProductColorChannelListing struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductColorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_channel_listing_color_channel" json:"product_color_id"`
	ChannelID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_channel_listing_color_channel;index" json:"channel_id"`
}

func (ProductColorChannelListing) TableName() string { return "product_color_channel_listing" }

func (l *ProductColorChannelListing) BeforeCreate(tx *gorm.DB) error { return assignID(&l.ID) }
