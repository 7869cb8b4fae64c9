package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileView records a visit to a farmer profile. ViewerID is nil for guests.
type ProfileView struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PetaniID  uuid.UUID  `gorm:"column:petani_id;type:uuid;not null;index" json:"petaniId"`
	ViewerID  *uuid.UUID `gorm:"column:viewer_id;type:uuid" json:"viewerId"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
