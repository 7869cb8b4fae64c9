package applications

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
	"github.com/tandur-id/tandur-backend/pkg/pagination"
	"gorm.io/gorm"
)

// waMeLinkPattern is the only accepted contact-link shape.
var waMeLinkPattern = regexp.MustCompile(`^https://wa\.me/\d+$`)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the farmer application workflow.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, submission Submission) (uuid.UUID, error)
	AdminList(ctx context.Context, params ListParams) (*ListResult, error)
	Review(ctx context.Context, reviewerID uuid.UUID, params ReviewParams) (*AdminApplication, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
	OwnStatus(ctx context.Context, userID uuid.UUID) (*StatusResult, error)
}

// Submission carries one complete application form.
type Submission struct {
	Nama              string
	Username          string
	Bio               string
	Lokasi            string
	LinkWhatsapp      string
	AlasanMenjadi     string
	PengalamanBertani string
	JenisKomoditas    string
	LuasLahan         string
	LokasiLahan       string
	FotoProfil        string
	FotoKTP           string
	SertifikatLahan   []string
}

// ListParams configures the admin listing.
type ListParams struct {
	Status string
	Page   int
	Limit  int
}

// PublicUser is the subset of identity fields exposed in admin listings.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username *string   `json:"username"`
	Email    string    `json:"email"`
	Image    *string   `json:"image"`
}

// AdminApplication is an application enriched with owner/reviewer identities.
// Owner or Reviewer may be nil when the lookup fails or the row is gone.
type AdminApplication struct {
	models.PetaniApplication
	Owner    *PublicUser `json:"user"`
	Reviewer *PublicUser `json:"reviewer"`
}

// ListResult is a page of enriched applications.
type ListResult struct {
	Applications []AdminApplication `json:"applications"`
	Pagination   pagination.Meta    `json:"pagination"`
}

// ReviewParams carries one status transition.
type ReviewParams struct {
	ApplicationID uuid.UUID
	Status        string
	AdminNotes    *string
}

// StatusResult is the applicant-facing view of their own application.
type StatusResult struct {
	HasApplication bool            `json:"hasApplication"`
	Application    *OwnApplication `json:"application,omitempty"`
}

// OwnApplication exposes the caller's application with reviewer identity.
type OwnApplication struct {
	models.PetaniApplication
	Reviewer *PublicUser `json:"reviewer"`
}

type service struct {
	repo      Repository
	usersRepo users.Repository
	tx        TxRunner
	logg      *logger.Logger
}

// NewService wires the application workflow dependencies.
func NewService(repo Repository, usersRepo users.Repository, tx TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "applications repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, usersRepo: usersRepo, tx: tx, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, submission Submission) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	if field := firstMissingField(submission); field != "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required field").
			WithDetails(map[string]string{field: "is required"})
	}

	if !waMeLinkPattern.MatchString(submission.LinkWhatsapp) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "linkWhatsapp harus berupa link https://wa.me/nomor")
	}

	caller, err := s.usersRepo.GetByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load caller")
	}

	if caller.Role == enums.UserRolePetani {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "anda sudah terdaftar sebagai petani")
	}

	exists, err := s.repo.ExistsForUser(ctx, userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing application")
	}
	if exists {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "anda sudah memiliki pengajuan")
	}

	username := strings.TrimSpace(submission.Username)
	if caller.Username == nil || *caller.Username != username {
		taken, err := s.usersRepo.UsernameTaken(ctx, username, userID)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if taken {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "username sudah digunakan")
		}
	}

	application := &models.PetaniApplication{
		UserID:            userID,
		Nama:              strings.TrimSpace(submission.Nama),
		Username:          username,
		Bio:               submission.Bio,
		Lokasi:            submission.Lokasi,
		LinkWhatsapp:      submission.LinkWhatsapp,
		AlasanMenjadi:     submission.AlasanMenjadi,
		PengalamanBertani: submission.PengalamanBertani,
		JenisKomoditas:    submission.JenisKomoditas,
		LuasLahan:         submission.LuasLahan,
		LokasiLahan:       submission.LokasiLahan,
		FotoKTP:           submission.FotoKTP,
		SertifikatLahan:   submission.SertifikatLahan,
		Status:            enums.ApplicationStatusPending,
	}
	if submission.FotoProfil != "" {
		application.FotoProfil = &submission.FotoProfil
	}
	if application.SertifikatLahan == nil {
		application.SertifikatLahan = []string{}
	}

	if err := s.repo.Create(ctx, application); err != nil {
		// the unique index on user_id closes the check-then-insert race
		if db.IsUniqueViolation(err) {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "anda sudah memiliki pengajuan")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application")
	}

	return application.ID, nil
}

func firstMissingField(submission Submission) string {
	required := []struct {
		name  string
		value string
	}{
		{"nama", submission.Nama},
		{"username", submission.Username},
		{"bio", submission.Bio},
		{"lokasi", submission.Lokasi},
		{"linkWhatsapp", submission.LinkWhatsapp},
		{"alasanMenjadi", submission.AlasanMenjadi},
		{"pengalamanBertani", submission.PengalamanBertani},
		{"jenisKomoditas", submission.JenisKomoditas},
		{"luasLahan", submission.LuasLahan},
		{"lokasiLahan", submission.LokasiLahan},
		{"fotoKTP", submission.FotoKTP},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return field.name
		}
	}
	return ""
}

func (s *service) AdminList(ctx context.Context, params ListParams) (*ListResult, error) {
	var status *enums.ApplicationStatus
	if params.Status != "" && params.Status != "all" {
		parsed, err := enums.ParseApplicationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		status = &parsed
	}

	page := pagination.Normalize(params.Page, params.Limit)

	total, err := s.repo.Count(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count applications")
	}

	rows, err := s.repo.List(ctx, status, page.Offset(), page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}

	enriched := make([]AdminApplication, 0, len(rows))
	for _, row := range rows {
		item := AdminApplication{PetaniApplication: row}
		item.Owner = s.publicUser(ctx, row.UserID)
		if row.ReviewedBy != nil {
			item.Reviewer = s.publicUser(ctx, *row.ReviewedBy)
		}
		enriched = append(enriched, item)
	}

	return &ListResult{
		Applications: enriched,
		Pagination:   pagination.NewMeta(page, total),
	}, nil
}

// publicUser resolves an identity for enrichment. Lookup failures degrade to
// nil so one missing user never fails the page.
func (s *service) publicUser(ctx context.Context, id uuid.UUID) *PublicUser {
	user, err := s.usersRepo.GetByID(ctx, id)
	if err != nil {
		if s.logg != nil && !db.IsNotFound(err) {
			s.logg.Warn(s.logg.WithField(ctx, "lookup_user_id", id.String()), "application enrichment lookup failed")
		}
		return nil
	}
	return &PublicUser{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		Email:    user.Email,
		Image:    user.Image,
	}
}

func (s *service) Review(ctx context.Context, reviewerID uuid.UUID, params ReviewParams) (*AdminApplication, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if params.ApplicationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "applicationId required")
	}

	target, err := enums.ParseApplicationStatus(params.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	now := time.Now().UTC()
	var reviewed *models.PetaniApplication

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		usersRepo := s.usersRepo.WithTx(tx)

		application, err := repo.GetByID(ctx, params.ApplicationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pengajuan tidak ditemukan")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
		}

		updates := map[string]any{
			"status":      target,
			"admin_notes": params.AdminNotes,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}
		if err := repo.Update(ctx, application.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update application")
		}

		if target == enums.ApplicationStatusApproved {
			if err := s.applyApproval(ctx, usersRepo, application); err != nil {
				return err
			}
		}

		application.Status = target
		application.AdminNotes = params.AdminNotes
		application.ReviewedBy = &reviewerID
		application.ReviewedAt = &now
		reviewed = application
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "review transaction")
	}

	result := &AdminApplication{PetaniApplication: *reviewed}
	result.Owner = s.publicUser(ctx, reviewed.UserID)
	result.Reviewer = s.publicUser(ctx, reviewerID)
	return result, nil
}

// applyApproval elevates the owner to PETANI and copies the non-empty profile
// fields from the application. Empty fields never overwrite.
func (s *service) applyApproval(ctx context.Context, usersRepo users.Repository, application *models.PetaniApplication) error {
	owner, err := usersRepo.GetByID(ctx, application.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			// owner deleted after applying: approve the record, skip the copy-in
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applicant")
	}

	updates := map[string]any{"role": enums.UserRolePetani}
	if strings.TrimSpace(application.Nama) != "" {
		updates["name"] = application.Nama
	}
	if strings.TrimSpace(application.Username) != "" {
		updates["username"] = application.Username
	}
	if strings.TrimSpace(application.Bio) != "" {
		updates["bio"] = application.Bio
	}
	if application.FotoProfil != nil && strings.TrimSpace(*application.FotoProfil) != "" {
		updates["image"] = *application.FotoProfil
	}

	if err := usersRepo.Update(ctx, owner.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "elevate applicant")
	}
	return nil
}

func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete application")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pengajuan tidak ditemukan")
	}
	return nil
}

func (s *service) OwnStatus(ctx context.Context, userID uuid.UUID) (*StatusResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	application, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return &StatusResult{HasApplication: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}

	own := &OwnApplication{PetaniApplication: *application}
	if application.ReviewedBy != nil {
		own.Reviewer = s.publicUser(ctx, *application.ReviewedBy)
	}

	return &StatusResult{HasApplication: true, Application: own}, nil
}
