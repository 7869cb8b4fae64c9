package chatbot

import (
	"context"
	"time"

	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"gorm.io/gorm"
)

const contextRows = 10

// PlatformCounts are the aggregate numbers handed to the stats intent.
type PlatformCounts struct {
	Farmers  int64 `json:"farmers"`
	Projects int64 `json:"projects"`
	Products int64 `json:"products"`
	Updates  int64 `json:"updates"`
}

// Repository runs one canned query per intent to build the prompt context.
type Repository interface {
	NewProducts(ctx context.Context, since time.Time) ([]models.Produk, error)
	AvailableProducts(ctx context.Context) ([]models.Produk, error)
	ProductsMatching(ctx context.Context, keywords []string) ([]models.Produk, error)
	CheapestProducts(ctx context.Context) ([]models.Produk, error)
	NewestFarmers(ctx context.Context) ([]models.User, error)
	ActiveFarmers(ctx context.Context) ([]models.User, error)
	RecentProjects(ctx context.Context) ([]models.ProyekTani, error)
	Counts(ctx context.Context) (*PlatformCounts, error)
	RecentUpdates(ctx context.Context) ([]models.FarmingUpdate, error)
	ProjectLocations(ctx context.Context) ([]string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a chatbot repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) NewProducts(ctx context.Context, since time.Time) ([]models.Produk, error) {
	var products []models.Produk
	err := r.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Limit(contextRows).
		Find(&products).Error
	return products, err
}

func (r *repositoryImpl) AvailableProducts(ctx context.Context) ([]models.Produk, error) {
	var products []models.Produk
	err := r.db.WithContext(ctx).
		Where("status = ? AND stok_tersedia > 0", enums.ProductStatusTersedia).
		Order("created_at DESC").
		Limit(contextRows).
		Find(&products).Error
	return products, err
}

func (r *repositoryImpl) ProductsMatching(ctx context.Context, keywords []string) ([]models.Produk, error) {
	query := r.db.WithContext(ctx).Model(&models.Produk{})

	var conditions *gorm.DB
	for _, keyword := range keywords {
		pattern := "%" + keyword + "%"
		clause := r.db.Where("LOWER(nama_produk) LIKE ? OR LOWER(deskripsi) LIKE ?", pattern, pattern)
		if conditions == nil {
			conditions = clause
		} else {
			conditions = conditions.Or(clause)
		}
	}
	if conditions != nil {
		query = query.Where(conditions)
	}

	var products []models.Produk
	err := query.Order("created_at DESC").Limit(contextRows).Find(&products).Error
	return products, err
}

func (r *repositoryImpl) CheapestProducts(ctx context.Context) ([]models.Produk, error) {
	var products []models.Produk
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ProductStatusTersedia).
		Order("harga ASC").
		Limit(contextRows).
		Find(&products).Error
	return products, err
}

func (r *repositoryImpl) NewestFarmers(ctx context.Context) ([]models.User, error) {
	var farmers []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRolePetani).
		Order("created_at DESC").
		Limit(contextRows).
		Find(&farmers).Error
	return farmers, err
}

func (r *repositoryImpl) ActiveFarmers(ctx context.Context) ([]models.User, error) {
	var farmers []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, COUNT(proyek_tanis.id) AS project_count").
		Joins("JOIN proyek_tanis ON proyek_tanis.petani_id = users.id").
		Where("users.role = ?", enums.UserRolePetani).
		Group("users.id").
		Order("project_count DESC").
		Limit(contextRows).
		Find(&farmers).Error
	return farmers, err
}

func (r *repositoryImpl) RecentProjects(ctx context.Context) ([]models.ProyekTani, error) {
	var projects []models.ProyekTani
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(contextRows).
		Find(&projects).Error
	return projects, err
}

func (r *repositoryImpl) Counts(ctx context.Context) (*PlatformCounts, error) {
	counts := &PlatformCounts{}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", enums.UserRolePetani).Count(&counts.Farmers).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.ProyekTani{}).Count(&counts.Projects).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Produk{}).Count(&counts.Products).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.FarmingUpdate{}).Count(&counts.Updates).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repositoryImpl) RecentUpdates(ctx context.Context) ([]models.FarmingUpdate, error) {
	var updates []models.FarmingUpdate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(contextRows).
		Find(&updates).Error
	return updates, err
}

func (r *repositoryImpl) ProjectLocations(ctx context.Context) ([]string, error) {
	var locations []string
	err := r.db.WithContext(ctx).
		Model(&models.ProyekTani{}).
		Distinct("lokasi_lahan").
		Order("lokasi_lahan ASC").
		Limit(contextRows * 2).
		Pluck("lokasi_lahan", &locations).Error
	return locations, err
}
