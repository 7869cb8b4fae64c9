package projects

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
)

const (
	maxNamaLen      = 100
	maxDeskripsiLen = 500
	maxLokasiLen    = 200
)

var defaultFaseNames = []string{"Persiapan Lahan", "Penanaman", "Perawatan", "Panen"}

// PetaniPublic is the owner summary embedded in public project payloads.
type PetaniPublic struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username *string   `json:"username"`
	Lokasi   *string   `json:"lokasi"`
	Image    *string   `json:"image"`
}

// ProjectDetail is the public view of one project.
type ProjectDetail struct {
	models.ProyekTani
	Petani *PetaniPublic      `json:"petani"`
	Fases  []models.FaseProyek `json:"fases"`
	Produk []models.Produk     `json:"produk"`
}

// CreateParams carries a new project submission.
type CreateParams struct {
	NamaProyek  string
	Deskripsi   string
	LokasiLahan string
}

// UpdateParams carries optional project mutations; nil fields are untouched.
type UpdateParams struct {
	NamaProyek  *string
	Deskripsi   *string
	LokasiLahan *string
	Status      *string
}

// UpdateFaseParams carries optional phase mutations; nil fields are untouched.
type UpdateFaseParams struct {
	Nama   *string
	Cerita *string
	Gambar []string
}

// Service defines project lifecycle operations.
type Service interface {
	Create(ctx context.Context, petaniID uuid.UUID, params CreateParams) (*models.ProyekTani, error)
	Detail(ctx context.Context, projectID uuid.UUID) (*ProjectDetail, error)
	Update(ctx context.Context, callerID, projectID uuid.UUID, params UpdateParams) (*models.ProyekTani, error)
	Delete(ctx context.Context, callerID, projectID uuid.UUID) error
	GetFase(ctx context.Context, projectID, faseID uuid.UUID) (*models.FaseProyek, error)
	UpdateFase(ctx context.Context, callerID, projectID, faseID uuid.UUID, params UpdateFaseParams) (*models.FaseProyek, error)
}

type service struct {
	repo      Repository
	usersRepo users.Repository
}

// NewService wires projects dependencies.
func NewService(repo Repository, usersRepo users.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, usersRepo: usersRepo}, nil
}

func (s *service) Create(ctx context.Context, petaniID uuid.UUID, params CreateParams) (*models.ProyekTani, error) {
	if petaniID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateProjectFields(params.NamaProyek, params.Deskripsi, params.LokasiLahan); err != nil {
		return nil, err
	}

	project := &models.ProyekTani{
		PetaniID:    petaniID,
		NamaProyek:  strings.TrimSpace(params.NamaProyek),
		Deskripsi:   strings.TrimSpace(params.Deskripsi),
		LokasiLahan: strings.TrimSpace(params.LokasiLahan),
		Status:      enums.ProjectStatusPersiapan,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}

	// every project starts with the four season phases; farmers fill the
	// stories in as the season progresses
	for i, nama := range defaultFaseNames {
		fase := &models.FaseProyek{
			ProyekTaniID: project.ID,
			Nama:         nama,
			Slug:         slugify(nama),
			Gambar:       pq.StringArray{},
			Urutan:       i + 1,
		}
		if err := s.repo.CreateFase(ctx, fase); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed fases")
		}
	}

	return project, nil
}

func (s *service) Detail(ctx context.Context, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyek tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	detail := &ProjectDetail{ProyekTani: *project}

	if owner, err := s.usersRepo.GetByID(ctx, project.PetaniID); err == nil {
		detail.Petani = &PetaniPublic{
			ID:       owner.ID,
			Name:     owner.Name,
			Username: owner.Username,
			Lokasi:   owner.Lokasi,
			Image:    owner.Image,
		}
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
	}

	fases, err := s.repo.ListFases(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fases")
	}
	detail.Fases = fases
	if detail.Fases == nil {
		detail.Fases = []models.FaseProyek{}
	}

	products, err := s.repo.ListProducts(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	detail.Produk = products
	if detail.Produk == nil {
		detail.Produk = []models.Produk{}
	}

	return detail, nil
}

func (s *service) Update(ctx context.Context, callerID, projectID uuid.UUID, params UpdateParams) (*models.ProyekTani, error) {
	project, err := s.ownedProject(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if params.NamaProyek != nil {
		nama := strings.TrimSpace(*params.NamaProyek)
		if nama == "" || utf8.RuneCountInString(nama) > maxNamaLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nama proyek wajib diisi, maksimal 100 karakter")
		}
		updates["nama_proyek"] = nama
	}
	if params.Deskripsi != nil {
		deskripsi := strings.TrimSpace(*params.Deskripsi)
		if deskripsi == "" || utf8.RuneCountInString(deskripsi) > maxDeskripsiLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deskripsi wajib diisi, maksimal 500 karakter")
		}
		updates["deskripsi"] = deskripsi
	}
	if params.LokasiLahan != nil {
		lokasi := strings.TrimSpace(*params.LokasiLahan)
		if lokasi == "" || utf8.RuneCountInString(lokasi) > maxLokasiLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "lokasi lahan wajib diisi, maksimal 200 karakter")
		}
		updates["lokasi_lahan"] = lokasi
	}
	if params.Status != nil {
		status, err := enums.ParseProjectStatus(*params.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status proyek tidak valid")
		}
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, project.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
		}
	}

	updated, err := s.repo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload project")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, callerID, projectID uuid.UUID) error {
	project, err := s.ownedProject(ctx, callerID, projectID)
	if err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, project.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "proyek tidak ditemukan")
	}
	return nil
}

func (s *service) GetFase(ctx context.Context, projectID, faseID uuid.UUID) (*models.FaseProyek, error) {
	fase, err := s.repo.GetFase(ctx, projectID, faseID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fase tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fase")
	}
	return fase, nil
}

func (s *service) UpdateFase(ctx context.Context, callerID, projectID, faseID uuid.UUID, params UpdateFaseParams) (*models.FaseProyek, error) {
	if _, err := s.ownedProject(ctx, callerID, projectID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.Nama != nil {
		nama := strings.TrimSpace(*params.Nama)
		if nama == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nama fase wajib diisi")
		}
		updates["nama"] = nama
		updates["slug"] = slugify(nama)
	}
	if params.Cerita != nil {
		updates["cerita"] = strings.TrimSpace(*params.Cerita)
	}
	if params.Gambar != nil {
		updates["gambar"] = pq.StringArray(params.Gambar)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFase(ctx, projectID, faseID, updates); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fase tidak ditemukan")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fase")
		}
	}

	return s.GetFase(ctx, projectID, faseID)
}

// ownedProject loads the project and enforces that the caller owns it.
func (s *service) ownedProject(ctx context.Context, callerID, projectID uuid.UUID) (*models.ProyekTani, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyek tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if project.PetaniID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "anda bukan pemilik proyek ini")
	}
	return project, nil
}

func validateProjectFields(nama, deskripsi, lokasi string) error {
	nama = strings.TrimSpace(nama)
	deskripsi = strings.TrimSpace(deskripsi)
	lokasi = strings.TrimSpace(lokasi)

	if nama == "" || utf8.RuneCountInString(nama) > maxNamaLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "nama proyek wajib diisi, maksimal 100 karakter")
	}
	if deskripsi == "" || utf8.RuneCountInString(deskripsi) > maxDeskripsiLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "deskripsi wajib diisi, maksimal 500 karakter")
	}
	if lokasi == "" || utf8.RuneCountInString(lokasi) > maxLokasiLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "lokasi lahan wajib diisi, maksimal 200 karakter")
	}
	return nil
}

func slugify(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
