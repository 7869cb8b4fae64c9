package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence for user identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListProjects(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error)
	ListFarmers(ctx context.Context, activeOnly bool, limit int) ([]models.User, error)
	ProjectPreviews(ctx context.Context, petaniID uuid.UUID, activeOnly bool, limit int) ([]models.ProyekTani, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListProjects(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error) {
	var projects []models.ProyekTani
	err := r.db.WithContext(ctx).
		Where("petani_id = ?", petaniID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repositoryImpl) ListFarmers(ctx context.Context, activeOnly bool, limit int) ([]models.User, error) {
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRolePetani)
	if activeOnly {
		query = query.
			Where("EXISTS (SELECT 1 FROM proyek_tanis WHERE proyek_tanis.petani_id = users.id AND proyek_tanis.status IN ?)", enums.ActiveProjectStatuses).
			Order("updated_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var farmers []models.User
	if err := query.Limit(limit).Find(&farmers).Error; err != nil {
		return nil, err
	}
	return farmers, nil
}

func (r *repositoryImpl) ProjectPreviews(ctx context.Context, petaniID uuid.UUID, activeOnly bool, limit int) ([]models.ProyekTani, error) {
	query := r.db.WithContext(ctx).Where("petani_id = ?", petaniID)
	if activeOnly {
		query = query.Where("status IN ?", enums.ActiveProjectStatuses)
	}

	var projects []models.ProyekTani
	err := query.Order("created_at DESC").Limit(limit).Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
