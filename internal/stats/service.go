package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
)

const (
	deltaWindow      = 7 * 24 * time.Hour
	viewsWindow      = 30 * 24 * time.Hour
	topProductCount  = 5
	dashboardUpdates = 5
)

// PlatformStats is the public landing-page aggregate.
type PlatformStats struct {
	TotalPetani     int64    `json:"totalPetani"`
	TotalProyek     int64    `json:"totalProyek"`
	TotalProduk     int64    `json:"totalProduk"`
	PetaniBaru7Hari int64    `json:"petaniBaru7Hari"`
	ProyekBaru7Hari int64    `json:"proyekBaru7Hari"`
	ProdukBaru7Hari int64    `json:"produkBaru7Hari"`
	ProyekAktif     int64    `json:"proyekAktif"`
	ProdukTersedia  int64    `json:"produkTersedia"`
	ProdukUnggulan  []string `json:"produkUnggulan"`
}

// DashboardStats is the farmer's own dashboard aggregate.
type DashboardStats struct {
	ProyekAktif     int64                  `json:"proyekAktif"`
	TotalProyek     int64                  `json:"totalProyek"`
	TotalProduk     int64                  `json:"totalProduk"`
	Kunjungan30Hari int64                  `json:"kunjungan30Hari"`
	UpdateTerbaru   []models.FarmingUpdate `json:"updateTerbaru"`
}

// Service defines the aggregate read operations.
type Service interface {
	Platform(ctx context.Context) (*PlatformStats, error)
	Dashboard(ctx context.Context, petaniID uuid.UUID) (*DashboardStats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires stats dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stats repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Platform(ctx context.Context) (*PlatformStats, error) {
	weekAgo := s.now().Add(-deltaWindow)
	out := &PlatformStats{}

	var err error
	if out.TotalPetani, err = s.repo.CountFarmers(ctx, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count farmers")
	}
	if out.TotalProyek, err = s.repo.CountProjects(ctx, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count projects")
	}
	if out.TotalProduk, err = s.repo.CountProducts(ctx, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if out.PetaniBaru7Hari, err = s.repo.CountFarmers(ctx, &weekAgo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count new farmers")
	}
	if out.ProyekBaru7Hari, err = s.repo.CountProjects(ctx, &weekAgo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count new projects")
	}
	if out.ProdukBaru7Hari, err = s.repo.CountProducts(ctx, &weekAgo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count new products")
	}
	if out.ProyekAktif, err = s.repo.CountActiveProjects(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active projects")
	}
	if out.ProdukTersedia, err = s.repo.CountAvailableProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count available products")
	}
	if out.ProdukUnggulan, err = s.repo.TopProductNames(ctx, topProductCount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}
	if out.ProdukUnggulan == nil {
		out.ProdukUnggulan = []string{}
	}
	return out, nil
}

func (s *service) Dashboard(ctx context.Context, petaniID uuid.UUID) (*DashboardStats, error) {
	if petaniID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	out := &DashboardStats{}
	var err error

	if out.ProyekAktif, err = s.repo.CountProjectsByPetani(ctx, petaniID, true); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active projects")
	}
	if out.TotalProyek, err = s.repo.CountProjectsByPetani(ctx, petaniID, false); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count projects")
	}
	if out.TotalProduk, err = s.repo.CountProductsByPetani(ctx, petaniID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if out.Kunjungan30Hari, err = s.repo.CountProfileViews(ctx, petaniID, s.now().Add(-viewsWindow)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count profile views")
	}
	if out.UpdateTerbaru, err = s.repo.LatestUpdatesByPetani(ctx, petaniID, dashboardUpdates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "latest updates")
	}
	if out.UpdateTerbaru == nil {
		out.UpdateTerbaru = []models.FarmingUpdate{}
	}
	return out, nil
}
