package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user comment on a feed post.
type Comment struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	FarmingUpdateID uuid.UUID `gorm:"column:farming_update_id;type:uuid;not null;index" json:"farmingUpdateId"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
