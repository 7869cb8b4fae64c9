package models

import (
	"time"

	"github.com/google/uuid"
)

// Like records one user liking one feed post. The composite unique index is
// the sole guard against double-likes; duplicate inserts surface as a
// unique violation.
type Like struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_update" json:"userId"`
	FarmingUpdateID uuid.UUID `gorm:"column:farming_update_id;type:uuid;not null;uniqueIndex:idx_likes_user_update;index" json:"farmingUpdateId"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
