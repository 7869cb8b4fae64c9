package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/internal/projects"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	newWindow        = 30 * 24 * time.Hour
)

// ListParams come straight from the public listing query string.
type ListParams struct {
	// Type is "", "new", "available", or "preorder".
	Type     string
	Category string
	Limit    int
}

// ProjectSummary is the parent project embedded in a listed product.
type ProjectSummary struct {
	ID         uuid.UUID `json:"id"`
	NamaProyek string    `json:"namaProyek"`
	Lokasi     string    `json:"lokasi"`
}

// FarmerSummary is the selling farmer embedded in a listed product.
type FarmerSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username *string   `json:"username"`
	Image    *string   `json:"image"`
}

// ListedProduct is one public listing entry.
type ListedProduct struct {
	models.Produk
	Proyek *ProjectSummary `json:"proyek"`
	Petani *FarmerSummary  `json:"petani"`
}

// CreateParams carries a new product under one of the caller's projects.
type CreateParams struct {
	ProyekTaniID  uuid.UUID
	NamaProduk    string
	Deskripsi     string
	FotoURL       *string
	Harga         int64
	Unit          string
	StokTersedia  int
	Status        string
	EstimasiPanen *time.Time
}

// UpdateParams carries optional product mutations; nil fields are untouched.
type UpdateParams struct {
	NamaProduk    *string
	Deskripsi     *string
	FotoURL       *string
	Harga         *int64
	Unit          *string
	StokTersedia  *int
	Status        *string
	EstimasiPanen *time.Time
}

// Service defines buyer-side listing and farmer-side product management.
type Service interface {
	List(ctx context.Context, params ListParams) ([]ListedProduct, error)
	Create(ctx context.Context, callerID uuid.UUID, params CreateParams) (*models.Produk, error)
	Update(ctx context.Context, callerID, productID uuid.UUID, params UpdateParams) (*models.Produk, error)
	Delete(ctx context.Context, callerID, productID uuid.UUID) error
}

type service struct {
	repo         Repository
	projectsRepo projects.Repository
	usersRepo    users.Repository
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires products dependencies.
func NewService(repo Repository, projectsRepo projects.Repository, usersRepo users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if projectsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{
		repo:         repo,
		projectsRepo: projectsRepo,
		usersRepo:    usersRepo,
		logg:         logg,
		now:          time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]ListedProduct, error) {
	filter := ListFilter{
		Category: params.Category,
		Limit:    normalizeLimit(params.Limit),
	}

	switch strings.ToLower(strings.TrimSpace(params.Type)) {
	case "", "all":
	case "new":
		cutoff := s.now().Add(-newWindow)
		filter.NewerThan = &cutoff
	case "available":
		status := enums.ProductStatusTersedia
		filter.Status = &status
		filter.InStockOnly = true
	case "preorder":
		status := enums.ProductStatusPreorder
		filter.Status = &status
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipe produk tidak valid")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	listed := make([]ListedProduct, 0, len(rows))
	for _, product := range rows {
		entry := ListedProduct{Produk: product}
		s.enrich(ctx, &entry)
		listed = append(listed, entry)
	}
	return listed, nil
}

// enrich attaches parent project and farmer summaries. Lookups degrade to
// nil rather than failing the listing.
func (s *service) enrich(ctx context.Context, entry *ListedProduct) {
	project, err := s.projectsRepo.GetByID(ctx, entry.ProyekTaniID)
	if err != nil {
		if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "proyekTaniId", entry.ProyekTaniID.String()), "product project lookup failed")
		}
		return
	}
	entry.Proyek = &ProjectSummary{
		ID:         project.ID,
		NamaProyek: project.NamaProyek,
		Lokasi:     project.LokasiLahan,
	}

	farmer, err := s.usersRepo.GetByID(ctx, project.PetaniID)
	if err != nil {
		if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "petaniId", project.PetaniID.String()), "product farmer lookup failed")
		}
		return
	}
	entry.Petani = &FarmerSummary{
		ID:       farmer.ID,
		Name:     farmer.Name,
		Username: farmer.Username,
		Image:    farmer.Image,
	}
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, params CreateParams) (*models.Produk, error) {
	if err := s.requireOwnProject(ctx, callerID, params.ProyekTaniID); err != nil {
		return nil, err
	}

	nama := strings.TrimSpace(params.NamaProduk)
	unit := strings.TrimSpace(params.Unit)
	if nama == "" || strings.TrimSpace(params.Deskripsi) == "" || unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nama produk, deskripsi, dan unit wajib diisi")
	}
	if params.Harga < 0 || params.StokTersedia < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga dan stok tidak boleh negatif")
	}

	status := enums.ProductStatusPreorder
	if strings.TrimSpace(params.Status) != "" {
		parsed, err := enums.ParseProductStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status produk tidak valid")
		}
		status = parsed
	}

	product := &models.Produk{
		ProyekTaniID:  params.ProyekTaniID,
		NamaProduk:    nama,
		Deskripsi:     strings.TrimSpace(params.Deskripsi),
		FotoURL:       params.FotoURL,
		Harga:         params.Harga,
		Unit:          unit,
		StokTersedia:  params.StokTersedia,
		Status:        status,
		EstimasiPanen: params.EstimasiPanen,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, callerID, productID uuid.UUID, params UpdateParams) (*models.Produk, error) {
	product, err := s.ownedProduct(ctx, callerID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.NamaProduk != nil {
		nama := strings.TrimSpace(*params.NamaProduk)
		if nama == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nama produk wajib diisi")
		}
		updates["nama_produk"] = nama
	}
	if params.Deskripsi != nil {
		updates["deskripsi"] = strings.TrimSpace(*params.Deskripsi)
	}
	if params.FotoURL != nil {
		updates["foto_url"] = *params.FotoURL
	}
	if params.Harga != nil {
		if *params.Harga < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga tidak boleh negatif")
		}
		updates["harga"] = *params.Harga
	}
	if params.Unit != nil {
		updates["unit"] = strings.TrimSpace(*params.Unit)
	}
	if params.StokTersedia != nil {
		if *params.StokTersedia < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stok tidak boleh negatif")
		}
		updates["stok_tersedia"] = *params.StokTersedia
	}
	if params.Status != nil {
		status, err := enums.ParseProductStatus(*params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status produk tidak valid")
		}
		updates["status"] = status
	}
	if params.EstimasiPanen != nil {
		updates["estimasi_panen"] = *params.EstimasiPanen
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, product.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}

	updated, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, callerID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, callerID, productID)
	if err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "produk tidak ditemukan")
	}
	return nil
}

// ownedProduct loads the product and walks up to the project to enforce
// that the caller owns it.
func (s *service) ownedProduct(ctx context.Context, callerID, productID uuid.UUID) (*models.Produk, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "produk tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.requireOwnProject(ctx, callerID, product.ProyekTaniID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) requireOwnProject(ctx context.Context, callerID, projectID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	project, err := s.projectsRepo.GetByID(ctx, projectID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "proyek tidak ditemukan")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if project.PetaniID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "anda bukan pemilik proyek ini")
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
