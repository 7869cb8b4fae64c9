package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FaseProyek is one narrated phase of a project timeline, ordered by Urutan.
type FaseProyek struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProyekTaniID uuid.UUID      `gorm:"column:proyek_tani_id;type:uuid;not null;index" json:"proyekTaniId"`
	Nama         string         `gorm:"type:text;not null" json:"nama"`
	Slug         string         `gorm:"type:text;not null" json:"slug"`
	Cerita       string         `gorm:"type:text;not null" json:"cerita"`
	Gambar       pq.StringArray `gorm:"type:text[];not null;default:ARRAY[]::text[]" json:"gambar"`
	Urutan       int            `gorm:"not null" json:"urutan"`
}
