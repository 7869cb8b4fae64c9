package applications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgdb "github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupApplicationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS petani_applications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  nama TEXT NOT NULL,
  username TEXT NOT NULL,
  bio TEXT NOT NULL,
  lokasi TEXT NOT NULL,
  link_whatsapp TEXT NOT NULL,
  alasan_menjadi TEXT NOT NULL,
  pengalaman_bertani TEXT NOT NULL,
  jenis_komoditas TEXT NOT NULL,
  luas_lahan TEXT NOT NULL,
  lokasi_lahan TEXT NOT NULL,
  foto_profil TEXT,
  foto_ktp TEXT NOT NULL,
  sertifikat_lahan TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'PENDING',
  admin_notes TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func fixtureApplication(userID uuid.UUID) *models.PetaniApplication {
	return &models.PetaniApplication{
		ID:                uuid.New(),
		UserID:            userID,
		Nama:              "Budi",
		Username:          "budi_tani",
		Bio:               "bio",
		Lokasi:            "Sleman",
		LinkWhatsapp:      "https://wa.me/628123456789",
		AlasanMenjadi:     "alasan",
		PengalamanBertani: "10 tahun",
		JenisKomoditas:    "Padi",
		LuasLahan:         "2 ha",
		LokasiLahan:       "Sleman utara",
		FotoKTP:           "ktp.jpg",
		SertifikatLahan:   []string{"sertifikat.jpg"},
		Status:            enums.ApplicationStatusPending,
	}
}

func TestRepoCreateEnforcesOneApplicationPerUser(t *testing.T) {
	db := setupApplicationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.Create(ctx, fixtureApplication(userID)))

	err := repo.Create(ctx, fixtureApplication(userID))
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err))
}

func TestRepoGetByUserID(t *testing.T) {
	db := setupApplicationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	created := fixtureApplication(userID)
	require.NoError(t, repo.Create(ctx, created))

	found, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, []string(created.SertifikatLahan), []string(found.SertifikatLahan))

	_, err = repo.GetByUserID(ctx, uuid.New())
	assert.True(t, pkgdb.IsNotFound(err))
}

func TestRepoListAndCountByStatus(t *testing.T) {
	db := setupApplicationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		app := fixtureApplication(uuid.New())
		if i < 2 {
			app.Status = enums.ApplicationStatusApproved
		}
		require.NoError(t, repo.Create(ctx, app))
	}

	total, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	approved := enums.ApplicationStatusApproved
	count, err := repo.Count(ctx, &approved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows, err := repo.List(ctx, &approved, 0, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	paged, err := repo.List(ctx, nil, 3, 10)
	require.NoError(t, err)
	assert.Len(t, paged, 2)
}

func TestRepoUpdateAndDelete(t *testing.T) {
	db := setupApplicationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	app := fixtureApplication(uuid.New())
	require.NoError(t, repo.Create(ctx, app))

	notes := "perlu verifikasi lahan"
	err := repo.Update(ctx, app.ID, map[string]any{
		"status":      enums.ApplicationStatusUnderReview,
		"admin_notes": &notes,
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApplicationStatusUnderReview, updated.Status)
	require.NotNil(t, updated.AdminNotes)
	assert.Equal(t, notes, *updated.AdminNotes)

	err = repo.Update(ctx, uuid.New(), map[string]any{"status": enums.ApplicationStatusApproved})
	assert.True(t, pkgdb.IsNotFound(err))

	found, err := repo.Delete(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Delete(ctx, app.ID)
	require.NoError(t, err)
	assert.False(t, found)
}
