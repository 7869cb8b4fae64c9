package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence for farming projects and their phases.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.ProyekTani) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProyekTani, error)
	ListByPetani(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	ListFases(ctx context.Context, projectID uuid.UUID) ([]models.FaseProyek, error)
	GetFase(ctx context.Context, projectID, faseID uuid.UUID) (*models.FaseProyek, error)
	CreateFase(ctx context.Context, fase *models.FaseProyek) error
	UpdateFase(ctx context.Context, projectID, faseID uuid.UUID, updates map[string]any) error

	ListProducts(ctx context.Context, projectID uuid.UUID) ([]models.Produk, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a projects repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, project *models.ProyekTani) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.ProyekTani, error) {
	var project models.ProyekTani
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repositoryImpl) ListByPetani(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error) {
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

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProyekTani{}).
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
	result := r.db.WithContext(ctx).Delete(&models.ProyekTani{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListFases(ctx context.Context, projectID uuid.UUID) ([]models.FaseProyek, error) {
	var fases []models.FaseProyek
	err := r.db.WithContext(ctx).
		Where("proyek_tani_id = ?", projectID).
		Order("urutan ASC").
		Find(&fases).Error
	if err != nil {
		return nil, err
	}
	return fases, nil
}

func (r *repositoryImpl) GetFase(ctx context.Context, projectID, faseID uuid.UUID) (*models.FaseProyek, error) {
	var fase models.FaseProyek
	err := r.db.WithContext(ctx).
		First(&fase, "id = ? AND proyek_tani_id = ?", faseID, projectID).Error
	if err != nil {
		return nil, err
	}
	return &fase, nil
}

func (r *repositoryImpl) CreateFase(ctx context.Context, fase *models.FaseProyek) error {
	return r.db.WithContext(ctx).Create(fase).Error
}

func (r *repositoryImpl) UpdateFase(ctx context.Context, projectID, faseID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.FaseProyek{}).
		Where("id = ? AND proyek_tani_id = ?", faseID, projectID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ListProducts(ctx context.Context, projectID uuid.UUID) ([]models.Produk, error) {
	var products []models.Produk
	err := r.db.WithContext(ctx).
		Where("proyek_tani_id = ?", projectID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
