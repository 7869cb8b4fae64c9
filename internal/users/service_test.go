package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	users    map[uuid.UUID]*models.User
	projects map[uuid.UUID][]models.ProyekTani
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:    map[uuid.UUID]*models.User{},
		projects: map[uuid.UUID][]models.ProyekTani{},
	}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	for id, user := range r.users {
		if id == excludeID {
			continue
		}
		if user.Username != nil && *user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	for id, user := range r.users {
		if id != excludeID && user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		switch column {
		case "name":
			user.Name = value.(string)
		case "email":
			user.Email = value.(string)
		case "username":
			v := value.(string)
			user.Username = &v
		case "bio":
			v := value.(string)
			user.Bio = &v
		case "lokasi":
			v := value.(string)
			user.Lokasi = &v
		case "link_whatsapp":
			v := value.(string)
			user.LinkWhatsapp = &v
		case "image":
			v := value.(string)
			user.Image = &v
		}
	}
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *stubRepo) ListProjects(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error) {
	return r.projects[petaniID], nil
}

func (r *stubRepo) ListFarmers(ctx context.Context, activeOnly bool, limit int) ([]models.User, error) {
	var farmers []models.User
	for _, user := range r.users {
		if user.Role != enums.UserRolePetani {
			continue
		}
		if activeOnly {
			running := false
			for _, project := range r.projects[user.ID] {
				if project.Status == enums.ProjectStatusPenanaman ||
					project.Status == enums.ProjectStatusPerawatan ||
					project.Status == enums.ProjectStatusPanen {
					running = true
					break
				}
			}
			if !running {
				continue
			}
		}
		farmers = append(farmers, *user)
		if len(farmers) == limit {
			break
		}
	}
	return farmers, nil
}

func (r *stubRepo) ProjectPreviews(ctx context.Context, petaniID uuid.UUID, activeOnly bool, limit int) ([]models.ProyekTani, error) {
	var previews []models.ProyekTani
	for _, project := range r.projects[petaniID] {
		if activeOnly && project.Status != enums.ProjectStatusPenanaman &&
			project.Status != enums.ProjectStatusPerawatan &&
			project.Status != enums.ProjectStatusPanen {
			continue
		}
		previews = append(previews, project)
		if len(previews) == limit {
			break
		}
	}
	return previews, nil
}

func seedUser(t *testing.T, repo *stubRepo, email string, username *string) uuid.UUID {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, Name: "Tester", Username: username}
	repo.users[user.ID] = user
	return user.ID
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func strptr(s string) *string { return &s }

func TestProfileNotFound(t *testing.T) {
	svc, _ := NewService(newStubRepo())
	_, err := svc.Profile(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateProfileSparseMerge(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	userID := seedUser(t, repo, "budi@tandur.id", strptr("budi"))
	repo.users[userID].Bio = strptr("bio lama")

	updated, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{
		Name:   strptr("  Budi Santoso  "),
		Lokasi: strptr("Sleman"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Budi Santoso" {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}
	if updated.Lokasi == nil || *updated.Lokasi != "Sleman" {
		t.Fatal("expected lokasi set")
	}
	if updated.Bio == nil || *updated.Bio != "bio lama" {
		t.Fatal("expected untouched bio preserved")
	}
	if updated.Username == nil || *updated.Username != "budi" {
		t.Fatal("expected untouched username preserved")
	}
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	seedUser(t, repo, "lain@tandur.id", strptr("taken"))
	userID := seedUser(t, repo, "budi@tandur.id", nil)

	_, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{Username: strptr("taken")})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateProfileKeepingOwnUsername(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	userID := seedUser(t, repo, "budi@tandur.id", strptr("budi"))

	updated, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{Username: strptr("budi")})
	if err != nil {
		t.Fatalf("re-submitting own username must not conflict: %v", err)
	}
	if updated.Username == nil || *updated.Username != "budi" {
		t.Fatal("expected username unchanged")
	}
}

func TestUpdateProfileEmailNormalizedAndChecked(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	seedUser(t, repo, "lain@tandur.id", nil)
	userID := seedUser(t, repo, "budi@tandur.id", nil)

	_, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{Email: strptr(" LAIN@tandur.id ")})
	assertCode(t, err, pkgerrors.CodeConflict)

	updated, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{Email: strptr("Budi.Baru@Tandur.ID")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "budi.baru@tandur.id" {
		t.Fatalf("expected lowercased email, got %q", updated.Email)
	}
}

func TestUpdateProfileRejectsEmptyName(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	userID := seedUser(t, repo, "budi@tandur.id", nil)

	_, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileParams{Name: strptr("   ")})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteAccount(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	userID := seedUser(t, repo, "budi@tandur.id", nil)

	if err := svc.DeleteAccount(context.Background(), userID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := svc.DeleteAccount(context.Background(), userID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestOwnProjects(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)
	userID := seedUser(t, repo, "budi@tandur.id", nil)
	repo.projects[userID] = []models.ProyekTani{{ID: uuid.New(), NamaProyek: "Padi Organik"}}

	projects, err := svc.OwnProjects(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 1 || projects[0].NamaProyek != "Padi Organik" {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestFarmersActiveFiltersIdleSeasons(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	activeID := seedUser(t, repo, "aktif@tandur.id", strptr("aktif"))
	repo.users[activeID].Role = enums.UserRolePetani
	repo.projects[activeID] = []models.ProyekTani{
		{ID: uuid.New(), NamaProyek: "Padi Musim Ini", Status: enums.ProjectStatusPenanaman},
		{ID: uuid.New(), NamaProyek: "Kebun Lama", Status: enums.ProjectStatusSelesai},
	}

	idleID := seedUser(t, repo, "santai@tandur.id", strptr("santai"))
	repo.users[idleID].Role = enums.UserRolePetani
	repo.projects[idleID] = []models.ProyekTani{
		{ID: uuid.New(), NamaProyek: "Sudah Panen", Status: enums.ProjectStatusSelesai},
	}

	seedUser(t, repo, "pembeli@tandur.id", nil)

	cards, err := svc.Farmers(context.Background(), "active", 10)
	if err != nil {
		t.Fatalf("farmers: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != activeID {
		t.Fatalf("expected only the active farmer, got %+v", cards)
	}
	if len(cards[0].Proyek) != 1 || cards[0].Proyek[0].NamaProyek != "Padi Musim Ini" {
		t.Fatalf("expected only running-season previews, got %+v", cards[0].Proyek)
	}
}

func TestFarmersDefaultListingIncludesAllSeasons(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	petaniID := seedUser(t, repo, "budi@tandur.id", strptr("budi"))
	repo.users[petaniID].Role = enums.UserRolePetani
	repo.projects[petaniID] = []models.ProyekTani{
		{ID: uuid.New(), NamaProyek: "Kebun Selesai", Status: enums.ProjectStatusSelesai},
	}
	seedUser(t, repo, "pembeli@tandur.id", nil)

	cards, err := svc.Farmers(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("farmers: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected one farmer card, got %d", len(cards))
	}
	if len(cards[0].Proyek) != 1 {
		t.Fatalf("expected finished project still listed, got %+v", cards[0].Proyek)
	}
}
