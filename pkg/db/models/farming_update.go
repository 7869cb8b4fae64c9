package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FarmingUpdate is a feed post attached to a project.
type FarmingUpdate struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProyekTaniID uuid.UUID      `gorm:"column:proyek_tani_id;type:uuid;not null;index" json:"proyekTaniId"`
	Judul        string         `gorm:"type:text;not null" json:"judul"`
	Deskripsi    string         `gorm:"type:text;not null" json:"deskripsi"`
	FotoURL      pq.StringArray `gorm:"column:foto_url;type:text[];not null;default:ARRAY[]::text[]" json:"fotoUrl"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
