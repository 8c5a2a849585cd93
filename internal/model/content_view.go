package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentTypeProfile is the only viewable content type today; the ledger is
// keyed on a string so other entities can be tracked without a schema change.
const ContentTypeProfile = "profile"

// ContentView records that a viewer looked at an entity. One row per
// (content_type, object_id, user, ip); repeat views only bump LastViewed.
type ContentView struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType string     `gorm:"size:50;not null;uniqueIndex:idx_content_view_identity" json:"content_type"`
	ObjectID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_content_view_identity" json:"object_id"`
	UserID      *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_content_view_identity" json:"user_id,omitempty"`
	User        *User      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ViewerIP    *string    `gorm:"size:45;uniqueIndex:idx_content_view_identity" json:"viewer_ip,omitempty"`
	LastViewed  time.Time  `gorm:"not null" json:"last_viewed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *ContentView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
