package preference

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PreferenceProfile owns all preference data of one shopper. Anonymous
// profiles are addressed by Token; UserID is set at most once.
type PreferenceProfile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"token"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (PreferenceProfile) TableName() string { return "preference_profile" }

func (p *PreferenceProfile) BeforeCreate(tx *gorm.DB) error {
	if p.Token == uuid.Nil {
		p.Token = uuid.New()
	}
	return assignID(&p.ID)
}
