package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/enums"
)

// CsMessage is one customer-service message plus the optional admin reply.
type CsMessage struct {
	ID         uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID             `gorm:"type:uuid;not null;index" json:"userId"`
	Message    string                `gorm:"type:text;not null" json:"message"`
	AdminReply *string               `gorm:"column:admin_reply" json:"adminReply"`
	AdminEmail *string               `gorm:"column:admin_email" json:"adminEmail"`
	Status     enums.CsMessageStatus `gorm:"type:text;not null;default:'UNREAD'" json:"status"`
	RepliedAt  *time.Time            `gorm:"column:replied_at" json:"repliedAt"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
