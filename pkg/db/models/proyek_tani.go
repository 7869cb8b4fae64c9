package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/enums"
)

// ProyekTani is a farmer's seasonal project.
type ProyekTani struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PetaniID    uuid.UUID           `gorm:"column:petani_id;type:uuid;not null;index" json:"petaniId"`
	NamaProyek  string              `gorm:"column:nama_proyek;not null" json:"namaProyek"`
	Deskripsi   string              `gorm:"type:text;not null" json:"deskripsi"`
	LokasiLahan string              `gorm:"column:lokasi_lahan;not null" json:"lokasiLahan"`
	Status      enums.ProjectStatus `gorm:"type:text;not null;default:'PERSIAPAN'" json:"status"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
