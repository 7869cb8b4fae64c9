package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"gorm.io/gorm"
)

// ListFilter narrows the public product listing.
type ListFilter struct {
	// NewerThan keeps products created after the given instant.
	NewerThan *time.Time
	// Status keeps products in the given sale state.
	Status *enums.ProductStatus
	// InStockOnly keeps products with stok_tersedia > 0.
	InStockOnly bool
	// Category substring-matches nama_produk, case-insensitive.
	Category string
	Limit    int
}

// Repository exposes persistence for harvest products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Produk) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Produk, error)
	List(ctx context.Context, filter ListFilter) ([]models.Produk, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.Produk) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Produk, error) {
	var product models.Produk
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter) ([]models.Produk, error) {
	query := r.db.WithContext(ctx).Model(&models.Produk{})

	if filter.NewerThan != nil {
		query = query.Where("created_at > ?", *filter.NewerThan)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.InStockOnly {
		query = query.Where("stok_tersedia > 0")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("LOWER(nama_produk) LIKE ?", "%"+strings.ToLower(category)+"%")
	}

	var products []models.Produk
	err := query.Order("created_at DESC").Limit(filter.Limit).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Produk{}).
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
	result := r.db.WithContext(ctx).Delete(&models.Produk{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
