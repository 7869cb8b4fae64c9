package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
)

const (
	defaultFarmerLimit = 10
	maxFarmerLimit     = 50
	projectPreviewRows = 3
)

// Service defines profile and account operations.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	OwnProjects(ctx context.Context, userID uuid.UUID) ([]models.ProyekTani, error)
	Farmers(ctx context.Context, listType string, limit int) ([]FarmerCard, error)
}

// ProjectPreview is the trimmed project view shown on farmer cards.
type ProjectPreview struct {
	ID         uuid.UUID           `json:"id"`
	NamaProyek string              `json:"namaProyek"`
	Status     enums.ProjectStatus `json:"status"`
}

// FarmerCard is the public directory entry for one farmer.
type FarmerCard struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Username  *string          `json:"username"`
	Lokasi    *string          `json:"lokasi"`
	Bio       *string          `json:"bio,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Proyek    []ProjectPreview `json:"proyekTani"`
}

// UpdateProfileParams carries the optional profile mutations; nil fields are
// left untouched.
type UpdateProfileParams struct {
	Name         *string
	Username     *string
	Email        *string
	Bio          *string
	Lokasi       *string
	LinkWhatsapp *string
	Image        *string
}

type service struct {
	repo Repository
}

// NewService wires users dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	updates := map[string]any{}

	if params.Username != nil {
		username := strings.TrimSpace(*params.Username)
		if username == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username cannot be empty")
		}
		taken, err := s.repo.UsernameTaken(ctx, username, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username sudah digunakan")
		}
		updates["username"] = username
	}

	if params.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*params.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		taken, err := s.repo.EmailTaken(ctx, email, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email sudah digunakan")
		}
		updates["email"] = email
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Bio != nil {
		updates["bio"] = *params.Bio
	}
	if params.Lokasi != nil {
		updates["lokasi"] = *params.Lokasi
	}
	if params.LinkWhatsapp != nil {
		updates["link_whatsapp"] = *params.LinkWhatsapp
	}
	if params.Image != nil {
		updates["image"] = *params.Image
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, userID, updates); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}
	}

	return s.Profile(ctx, userID)
}

func (s *service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	found, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *service) OwnProjects(ctx context.Context, userID uuid.UUID) ([]models.ProyekTani, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	return projects, nil
}

func (s *service) Farmers(ctx context.Context, listType string, limit int) ([]FarmerCard, error) {
	if limit <= 0 {
		limit = defaultFarmerLimit
	}
	if limit > maxFarmerLimit {
		limit = maxFarmerLimit
	}

	// "new" and the default listing share the same query; "active" narrows
	// both the farmers and their project previews to running seasons.
	activeOnly := strings.EqualFold(strings.TrimSpace(listType), "active")

	farmers, err := s.repo.ListFarmers(ctx, activeOnly, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmers")
	}

	cards := make([]FarmerCard, 0, len(farmers))
	for _, farmer := range farmers {
		previews, err := s.repo.ProjectPreviews(ctx, farmer.ID, activeOnly, projectPreviewRows)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project previews")
		}
		proyek := make([]ProjectPreview, 0, len(previews))
		for _, p := range previews {
			proyek = append(proyek, ProjectPreview{ID: p.ID, NamaProyek: p.NamaProyek, Status: p.Status})
		}
		cards = append(cards, FarmerCard{
			ID:        farmer.ID,
			Name:      farmer.Name,
			Username:  farmer.Username,
			Lokasi:    farmer.Lokasi,
			Bio:       farmer.Bio,
			CreatedAt: farmer.CreatedAt,
			Proyek:    proyek,
		})
	}
	return cards, nil
}
