package applications

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence for farmer applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, application *models.PetaniApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PetaniApplication, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PetaniApplication, error)
	ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)
	List(ctx context.Context, status *enums.ApplicationStatus, offset, limit int) ([]models.PetaniApplication, error)
	Count(ctx context.Context, status *enums.ApplicationStatus) (int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an applications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, application *models.PetaniApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.PetaniApplication, error) {
	var application models.PetaniApplication
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PetaniApplication, error) {
	var application models.PetaniApplication
	if err := r.db.WithContext(ctx).First(&application, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repositoryImpl) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PetaniApplication{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, status *enums.ApplicationStatus, offset, limit int) ([]models.PetaniApplication, error) {
	query := r.db.WithContext(ctx).Model(&models.PetaniApplication{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var applications []models.PetaniApplication
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *repositoryImpl) Count(ctx context.Context, status *enums.ApplicationStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PetaniApplication{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.PetaniApplication{}).
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

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.PetaniApplication{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
