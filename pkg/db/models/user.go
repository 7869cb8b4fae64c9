package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string         `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash    *string        `gorm:"column:password_hash" json:"-"`
	Name            string         `gorm:"type:text;not null" json:"name"`
	Username        *string        `gorm:"type:text;uniqueIndex" json:"username"`
	Bio             *string        `gorm:"type:text" json:"bio"`
	Lokasi          *string        `gorm:"type:text" json:"lokasi"`
	LinkWhatsapp    *string        `gorm:"column:link_whatsapp" json:"linkWhatsapp"`
	Image           *string        `gorm:"type:text" json:"image"`
	Role            enums.UserRole `gorm:"type:text;not null;default:'PEMBELI'" json:"role"`
	EmailVerifiedAt *time.Time     `gorm:"column:email_verified_at" json:"emailVerifiedAt"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
