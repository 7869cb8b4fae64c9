package profileviews

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

const (
	retention   = 7 * 24 * time.Hour
	purgeChance = 0.01
)

// Service records visits to farmer profiles.
type Service interface {
	// Record stores one visit. viewerID is uuid.Nil for guests; self-views
	// are silently dropped.
	Record(ctx context.Context, petaniID, viewerID uuid.UUID) error
}

type service struct {
	repo      Repository
	usersRepo users.Repository
	logg      *logger.Logger
	now       func() time.Time
	roll      func() float64
}

// NewService wires profile view dependencies.
func NewService(repo Repository, usersRepo users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile views repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{
		repo:      repo,
		usersRepo: usersRepo,
		logg:      logg,
		now:       time.Now,
		roll:      rand.Float64,
	}, nil
}

func (s *service) Record(ctx context.Context, petaniID, viewerID uuid.UUID) error {
	if petaniID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "petani id required")
	}
	if viewerID == petaniID {
		return nil
	}

	if _, err := s.usersRepo.GetByID(ctx, petaniID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "petani tidak ditemukan")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load petani")
	}

	view := &models.ProfileView{PetaniID: petaniID}
	if viewerID != uuid.Nil {
		id := viewerID
		view.ViewerID = &id
	}
	if err := s.repo.Create(ctx, view); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record view")
	}

	// stale rows are purged opportunistically on a small fraction of writes
	// instead of a scheduled job
	if s.roll() < purgeChance {
		cutoff := s.now().Add(-retention)
		if deleted, err := s.repo.DeleteOlderThan(ctx, cutoff); err != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, "profile view purge failed")
			}
		} else if deleted > 0 && s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "deleted", deleted), "purged stale profile views")
		}
	}
	return nil
}
