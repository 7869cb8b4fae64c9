package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/enums"
)

// Produk is a harvest product listed under a project. Harga is in rupiah.
type Produk struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProyekTaniID  uuid.UUID           `gorm:"column:proyek_tani_id;type:uuid;not null;index" json:"proyekTaniId"`
	NamaProduk    string              `gorm:"column:nama_produk;not null" json:"namaProduk"`
	Deskripsi     string              `gorm:"type:text;not null" json:"deskripsi"`
	FotoURL       *string             `gorm:"column:foto_url" json:"fotoUrl"`
	Harga         int64               `gorm:"not null" json:"harga"`
	Unit          string              `gorm:"type:text;not null" json:"unit"`
	StokTersedia  int                 `gorm:"column:stok_tersedia;not null;default:0" json:"stokTersedia"`
	Status        enums.ProductStatus `gorm:"type:text;not null;default:'PREORDER'" json:"status"`
	EstimasiPanen *time.Time          `gorm:"column:estimasi_panen" json:"estimasiPanen"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
