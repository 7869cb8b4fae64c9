package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository runs the aggregate queries behind the stats endpoints.
type Repository interface {
	CountFarmers(ctx context.Context, since *time.Time) (int64, error)
	CountProjects(ctx context.Context, since *time.Time) (int64, error)
	CountProducts(ctx context.Context, since *time.Time) (int64, error)
	CountActiveProjects(ctx context.Context) (int64, error)
	CountAvailableProducts(ctx context.Context) (int64, error)
	TopProductNames(ctx context.Context, limit int) ([]string, error)

	CountProjectsByPetani(ctx context.Context, petaniID uuid.UUID, activeOnly bool) (int64, error)
	CountProductsByPetani(ctx context.Context, petaniID uuid.UUID) (int64, error)
	CountProfileViews(ctx context.Context, petaniID uuid.UUID, since time.Time) (int64, error)
	LatestUpdatesByPetani(ctx context.Context, petaniID uuid.UUID, limit int) ([]models.FarmingUpdate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CountFarmers(ctx context.Context, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", enums.UserRolePetani)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountProjects(ctx context.Context, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProyekTani{})
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountProducts(ctx context.Context, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Produk{})
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountActiveProjects(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProyekTani{}).
		Where("status <> ?", enums.ProjectStatusSelesai).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountAvailableProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Produk{}).
		Where("status = ? AND stok_tersedia > 0", enums.ProductStatusTersedia).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) TopProductNames(ctx context.Context, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Produk{}).
		Where("status = ?", enums.ProductStatusTersedia).
		Order("stok_tersedia DESC").
		Limit(limit).
		Pluck("nama_produk", &names).Error
	return names, err
}

func (r *repositoryImpl) CountProjectsByPetani(ctx context.Context, petaniID uuid.UUID, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProyekTani{}).
		Where("petani_id = ?", petaniID)
	if activeOnly {
		query = query.Where("status <> ?", enums.ProjectStatusSelesai)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountProductsByPetani(ctx context.Context, petaniID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Produk{}).
		Joins("JOIN proyek_tanis ON proyek_tanis.id = produks.proyek_tani_id").
		Where("proyek_tanis.petani_id = ?", petaniID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountProfileViews(ctx context.Context, petaniID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProfileView{}).
		Where("petani_id = ? AND created_at > ?", petaniID, since).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) LatestUpdatesByPetani(ctx context.Context, petaniID uuid.UUID, limit int) ([]models.FarmingUpdate, error) {
	var updates []models.FarmingUpdate
	err := r.db.WithContext(ctx).
		Model(&models.FarmingUpdate{}).
		Joins("JOIN proyek_tanis ON proyek_tanis.id = farming_updates.proyek_tani_id").
		Where("proyek_tanis.petani_id = ?", petaniID).
		Order("farming_updates.created_at DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}
