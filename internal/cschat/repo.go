package cschat

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence for customer-service messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.CsMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CsMessage, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CsMessage, error)
	ListAll(ctx context.Context) ([]models.CsMessage, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a CS chat repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, message *models.CsMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.CsMessage, error) {
	var message models.CsMessage
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CsMessage, error) {
	var messages []models.CsMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.CsMessage, error) {
	var messages []models.CsMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.CsMessage{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.CsMessage{}, "user_id = ?", userID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
