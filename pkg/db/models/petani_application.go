package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tandur-id/tandur-backend/pkg/enums"
)

// PetaniApplication holds a farmer onboarding submission and its review state.
// The unique index on user_id is what guarantees at most one application per
// user; the service's pre-insert check only exists for a friendlier error.
type PetaniApplication struct {
	ID                uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Nama              string                  `gorm:"type:text;not null" json:"nama"`
	Username          string                  `gorm:"type:text;not null" json:"username"`
	Bio               string                  `gorm:"type:text;not null" json:"bio"`
	Lokasi            string                  `gorm:"type:text;not null" json:"lokasi"`
	LinkWhatsapp      string                  `gorm:"column:link_whatsapp;not null" json:"linkWhatsapp"`
	AlasanMenjadi     string                  `gorm:"column:alasan_menjadi;not null" json:"alasanMenjadi"`
	PengalamanBertani string                  `gorm:"column:pengalaman_bertani;not null" json:"pengalamanBertani"`
	JenisKomoditas    string                  `gorm:"column:jenis_komoditas;not null" json:"jenisKomoditas"`
	LuasLahan         string                  `gorm:"column:luas_lahan;not null" json:"luasLahan"`
	LokasiLahan       string                  `gorm:"column:lokasi_lahan;not null" json:"lokasiLahan"`
	FotoProfil        *string                 `gorm:"column:foto_profil" json:"fotoProfil"`
	FotoKTP           string                  `gorm:"column:foto_ktp;not null" json:"fotoKtp"`
	SertifikatLahan   pq.StringArray          `gorm:"column:sertifikat_lahan;type:text[];not null;default:ARRAY[]::text[]" json:"sertifikatLahan"`
	Status            enums.ApplicationStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	AdminNotes        *string                 `gorm:"column:admin_notes" json:"adminNotes"`
	ReviewedBy        *uuid.UUID              `gorm:"column:reviewed_by;type:uuid" json:"reviewedBy"`
	ReviewedAt        *time.Time              `gorm:"column:reviewed_at" json:"reviewedAt"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
