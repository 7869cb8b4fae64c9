package profileviews

import (
	"context"
	"time"

	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence for profile visits.
type Repository interface {
	Create(ctx context.Context, view *models.ProfileView) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a profile views repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, view *models.ProfileView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.ProfileView{}, "created_at < ?", cutoff)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
