package feed

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence for feed posts, likes, and comments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateUpdate(ctx context.Context, update *models.FarmingUpdate) error
	GetUpdate(ctx context.Context, id uuid.UUID) (*models.FarmingUpdate, error)
	ListRecent(ctx context.Context, limit int) ([]models.FarmingUpdate, error)
	ListPopular(ctx context.Context, limit int) ([]models.FarmingUpdate, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]models.FarmingUpdate, error)
	UpdateUpdate(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteUpdate(ctx context.Context, id uuid.UUID) (bool, error)

	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, userID, updateID uuid.UUID) (bool, error)
	CountLikes(ctx context.Context, updateID uuid.UUID) (int64, error)
	HasLiked(ctx context.Context, userID, updateID uuid.UUID) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, updateID uuid.UUID) ([]models.Comment, error)
	CountComments(ctx context.Context, updateID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a feed repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateUpdate(ctx context.Context, update *models.FarmingUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *repositoryImpl) GetUpdate(ctx context.Context, id uuid.UUID) (*models.FarmingUpdate, error) {
	var update models.FarmingUpdate
	if err := r.db.WithContext(ctx).First(&update, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *repositoryImpl) ListRecent(ctx context.Context, limit int) ([]models.FarmingUpdate, error) {
	var updates []models.FarmingUpdate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repositoryImpl) ListPopular(ctx context.Context, limit int) ([]models.FarmingUpdate, error) {
	var updates []models.FarmingUpdate
	err := r.db.WithContext(ctx).
		Model(&models.FarmingUpdate{}).
		Select("farming_updates.*, COUNT(likes.id) AS like_count").
		Joins("LEFT JOIN likes ON likes.farming_update_id = farming_updates.id").
		Group("farming_updates.id").
		Order("like_count DESC, farming_updates.created_at DESC").
		Limit(limit).
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repositoryImpl) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]models.FarmingUpdate, error) {
	var updates []models.FarmingUpdate
	query := r.db.WithContext(ctx).
		Where("proyek_tani_id = ?", projectID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repositoryImpl) UpdateUpdate(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.FarmingUpdate{}).
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

func (r *repositoryImpl) DeleteUpdate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.FarmingUpdate{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateLike(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *repositoryImpl) DeleteLike(ctx context.Context, userID, updateID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.Like{}, "user_id = ? AND farming_update_id = ?", userID, updateID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CountLikes(ctx context.Context, updateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("farming_update_id = ?", updateID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) HasLiked(ctx context.Context, userID, updateID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND farming_update_id = ?", userID, updateID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repositoryImpl) ListComments(ctx context.Context, updateID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("farming_update_id = ?", updateID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repositoryImpl) CountComments(ctx context.Context, updateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("farming_update_id = ?", updateID).
		Count(&count).Error
	return count, err
}
