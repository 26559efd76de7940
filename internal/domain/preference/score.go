package preference

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductScore is the per-profile aggregate over a product's color scores.
type ProductScore struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_score_profile_product" json:"profile_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_score_profile_product;index" json:"product_id"`
	Score     float64   `gorm:"not null;default:0" json:"score"`
	Version   int64     `gorm:"not null;default:0" json:"-"`
}

func (ProductScore) TableName() string { return "product_score" }

func (s *ProductScore) BeforeCreate(tx *gorm.DB) error { return assignID(&s.ID) }

// ProductColorScore is the affinity of a profile for one product color.
type ProductColorScore struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductScoreID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_score_parent_color" json:"product_score_id"`
	ProductColorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_color_score_parent_color;index" json:"product_color_id"`
	Score          float64   `gorm:"not null;default:0" json:"score"`
	Version        int64     `gorm:"not null;default:0" json:"-"`
}

func (ProductColorScore) TableName() string { return "product_color_score" }

func (s *ProductColorScore) BeforeCreate(tx *gorm.DB) error { return assignID(&s.ID) }
