package feed

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tandur-id/tandur-backend/internal/projects"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// AuthorSummary is the posting farmer embedded in a feed entry.
type AuthorSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username *string   `json:"username"`
	Image    *string   `json:"image"`
}

// FeedEntry is one enriched feed post.
type FeedEntry struct {
	models.FarmingUpdate
	NamaProyek   string         `json:"namaProyek"`
	Petani       *AuthorSummary `json:"petani"`
	LikeCount    int64          `json:"likeCount"`
	CommentCount int64          `json:"commentCount"`
	LikedByMe    bool           `json:"likedByMe"`
}

// CommentEntry is one comment enriched with its author.
type CommentEntry struct {
	models.Comment
	User *AuthorSummary `json:"user"`
}

// CreateUpdateParams carries a new feed post.
type CreateUpdateParams struct {
	ProyekTaniID uuid.UUID
	Judul        string
	Deskripsi    string
	FotoURL      []string
}

// UpdateUpdateParams carries optional post mutations; nil fields are untouched.
type UpdateUpdateParams struct {
	Judul     *string
	Deskripsi *string
	FotoURL   []string
}

// Service defines the community feed operations.
type Service interface {
	List(ctx context.Context, viewerID uuid.UUID, sort string, limit int) ([]FeedEntry, error)
	CreateUpdate(ctx context.Context, callerID uuid.UUID, params CreateUpdateParams) (*models.FarmingUpdate, error)
	UpdateUpdate(ctx context.Context, callerID, updateID uuid.UUID, params UpdateUpdateParams) (*models.FarmingUpdate, error)
	DeleteUpdate(ctx context.Context, callerID, updateID uuid.UUID) error
	Like(ctx context.Context, callerID, updateID uuid.UUID) error
	Unlike(ctx context.Context, callerID, updateID uuid.UUID) error
	Comment(ctx context.Context, callerID, updateID uuid.UUID, content string) (*models.Comment, error)
	Comments(ctx context.Context, updateID uuid.UUID) ([]CommentEntry, error)
}

type service struct {
	repo         Repository
	projectsRepo projects.Repository
	usersRepo    users.Repository
	logg         *logger.Logger
}

// NewService wires feed dependencies.
func NewService(repo Repository, projectsRepo projects.Repository, usersRepo users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "feed repository required")
	}
	if projectsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, projectsRepo: projectsRepo, usersRepo: usersRepo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, viewerID uuid.UUID, sort string, limit int) ([]FeedEntry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	var (
		rows []models.FarmingUpdate
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "", "recent":
		rows, err = s.repo.ListRecent(ctx, limit)
	case "popular":
		rows, err = s.repo.ListPopular(ctx, limit)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "urutan feed tidak valid")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list updates")
	}

	entries := make([]FeedEntry, 0, len(rows))
	for _, update := range rows {
		entry := FeedEntry{FarmingUpdate: update}

		// counter failures degrade to zero but still leave a trace
		if count, err := s.repo.CountLikes(ctx, update.ID); err == nil {
			entry.LikeCount = count
		} else {
			s.warnEnrichment(ctx, update.ID, "feed like count failed")
		}
		if count, err := s.repo.CountComments(ctx, update.ID); err == nil {
			entry.CommentCount = count
		} else {
			s.warnEnrichment(ctx, update.ID, "feed comment count failed")
		}
		if viewerID != uuid.Nil {
			if liked, err := s.repo.HasLiked(ctx, viewerID, update.ID); err == nil {
				entry.LikedByMe = liked
			} else {
				s.warnEnrichment(ctx, update.ID, "feed liked-by-viewer lookup failed")
			}
		}
		s.enrichAuthor(ctx, &entry)

		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *service) warnEnrichment(ctx context.Context, updateID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "farmingUpdateId", updateID.String()), msg)
}

// enrichAuthor resolves the post's project and farmer. Lookups degrade to
// empty fields rather than failing the feed.
func (s *service) enrichAuthor(ctx context.Context, entry *FeedEntry) {
	project, err := s.projectsRepo.GetByID(ctx, entry.ProyekTaniID)
	if err != nil {
		if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "proyekTaniId", entry.ProyekTaniID.String()), "feed project lookup failed")
		}
		return
	}
	entry.NamaProyek = project.NamaProyek

	farmer, err := s.usersRepo.GetByID(ctx, project.PetaniID)
	if err != nil {
		if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "petaniId", project.PetaniID.String()), "feed farmer lookup failed")
		}
		return
	}
	entry.Petani = &AuthorSummary{
		ID:       farmer.ID,
		Name:     farmer.Name,
		Username: farmer.Username,
		Image:    farmer.Image,
	}
}

func (s *service) CreateUpdate(ctx context.Context, callerID uuid.UUID, params CreateUpdateParams) (*models.FarmingUpdate, error) {
	if err := s.requireOwnProject(ctx, callerID, params.ProyekTaniID); err != nil {
		return nil, err
	}

	judul := strings.TrimSpace(params.Judul)
	deskripsi := strings.TrimSpace(params.Deskripsi)
	if judul == "" || deskripsi == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "judul dan deskripsi wajib diisi")
	}

	update := &models.FarmingUpdate{
		ProyekTaniID: params.ProyekTaniID,
		Judul:        judul,
		Deskripsi:    deskripsi,
		FotoURL:      pq.StringArray(params.FotoURL),
	}
	if update.FotoURL == nil {
		update.FotoURL = pq.StringArray{}
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create update")
	}
	return update, nil
}

func (s *service) UpdateUpdate(ctx context.Context, callerID, updateID uuid.UUID, params UpdateUpdateParams) (*models.FarmingUpdate, error) {
	update, err := s.ownedUpdate(ctx, callerID, updateID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.Judul != nil {
		judul := strings.TrimSpace(*params.Judul)
		if judul == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "judul wajib diisi")
		}
		updates["judul"] = judul
	}
	if params.Deskripsi != nil {
		deskripsi := strings.TrimSpace(*params.Deskripsi)
		if deskripsi == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deskripsi wajib diisi")
		}
		updates["deskripsi"] = deskripsi
	}
	if params.FotoURL != nil {
		updates["foto_url"] = pq.StringArray(params.FotoURL)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateUpdate(ctx, update.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
		}
	}

	reloaded, err := s.repo.GetUpdate(ctx, update.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload post")
	}
	return reloaded, nil
}

func (s *service) DeleteUpdate(ctx context.Context, callerID, updateID uuid.UUID) error {
	update, err := s.ownedUpdate(ctx, callerID, updateID)
	if err != nil {
		return err
	}
	found, err := s.repo.DeleteUpdate(ctx, update.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "update tidak ditemukan")
	}
	return nil
}

func (s *service) Like(ctx context.Context, callerID, updateID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.repo.GetUpdate(ctx, updateID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "update tidak ditemukan")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load update")
	}

	like := &models.Like{UserID: callerID, FarmingUpdateID: updateID}
	if err := s.repo.CreateLike(ctx, like); err != nil {
		// the composite unique index is the only double-like guard
		if db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "anda sudah menyukai update ini")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create like")
	}
	return nil
}

func (s *service) Unlike(ctx context.Context, callerID, updateID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	found, err := s.repo.DeleteLike(ctx, callerID, updateID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete like")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "like tidak ditemukan")
	}
	return nil
}

func (s *service) Comment(ctx context.Context, callerID, updateID uuid.UUID, content string) (*models.Comment, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "komentar tidak boleh kosong")
	}
	if _, err := s.repo.GetUpdate(ctx, updateID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "update tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load update")
	}

	comment := &models.Comment{
		UserID:          callerID,
		FarmingUpdateID: updateID,
		Content:         content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}
	return comment, nil
}

func (s *service) Comments(ctx context.Context, updateID uuid.UUID) ([]CommentEntry, error) {
	rows, err := s.repo.ListComments(ctx, updateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}

	entries := make([]CommentEntry, 0, len(rows))
	for _, comment := range rows {
		entry := CommentEntry{Comment: comment}
		if author, err := s.usersRepo.GetByID(ctx, comment.UserID); err == nil {
			entry.User = &AuthorSummary{
				ID:       author.ID,
				Name:     author.Name,
				Username: author.Username,
				Image:    author.Image,
			}
		} else if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "userId", comment.UserID.String()), "comment author lookup failed")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ownedUpdate loads the post and walks up to the project to enforce that
// the caller owns it.
func (s *service) ownedUpdate(ctx context.Context, callerID, updateID uuid.UUID) (*models.FarmingUpdate, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	update, err := s.repo.GetUpdate(ctx, updateID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "update tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load update")
	}
	if err := s.requireOwnProject(ctx, callerID, update.ProyekTaniID); err != nil {
		return nil, err
	}
	return update, nil
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
