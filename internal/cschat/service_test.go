package cschat

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	messages map[uuid.UUID]*models.CsMessage
}

func newStubRepo() *stubRepo {
	return &stubRepo{messages: map[uuid.UUID]*models.CsMessage{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, message *models.CsMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	copied := *message
	r.messages[message.ID] = &copied
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CsMessage, error) {
	if message, ok := r.messages[id]; ok {
		copied := *message
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CsMessage, error) {
	var out []models.CsMessage
	for _, message := range r.messages {
		if message.UserID == userID {
			out = append(out, *message)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubRepo) ListAll(ctx context.Context) ([]models.CsMessage, error) {
	var out []models.CsMessage
	for _, message := range r.messages {
		out = append(out, *message)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	message, ok := r.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["admin_reply"]; ok {
		reply := v.(string)
		message.AdminReply = &reply
	}
	if v, ok := updates["admin_email"]; ok {
		email := v.(string)
		message.AdminEmail = &email
	}
	if v, ok := updates["status"]; ok {
		message.Status = v.(enums.CsMessageStatus)
	}
	if v, ok := updates["replied_at"]; ok {
		at := v.(time.Time)
		message.RepliedAt = &at
	}
	return nil
}

func (r *stubRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var deleted int64
	for id, message := range r.messages {
		if message.UserID == userID {
			delete(r.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

type stubUsersRepo struct {
	users map[uuid.UUID]*models.User
}

func (r *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return r }

func (r *stubUsersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsersRepo) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return false, nil
}

func (r *stubUsersRepo) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return false, nil
}

func (r *stubUsersRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (r *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }

func (r *stubUsersRepo) ListProjects(ctx context.Context, petaniID uuid.UUID) ([]models.ProyekTani, error) {
	return nil, nil
}

func (r *stubUsersRepo) ListFarmers(ctx context.Context, activeOnly bool, limit int) ([]models.User, error) {
	return nil, nil
}

func (r *stubUsersRepo) ProjectPreviews(ctx context.Context, petaniID uuid.UUID, activeOnly bool, limit int) ([]models.ProyekTani, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *stubRepo, *stubUsersRepo) {
	t.Helper()
	repo := newStubRepo()
	usersRepo := &stubUsersRepo{users: map[uuid.UUID]*models.User{}}
	svc, err := NewService(repo, usersRepo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, usersRepo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestSendCreatesWalkInIdentity(t *testing.T) {
	svc, repo, usersRepo := newTestService(t)

	message, err := svc.Send(context.Background(), SendParams{
		Email:   "Tamu@Tandur.ID",
		Message: "Bagaimana cara daftar jadi petani?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.Status != enums.CsMessageStatusUnread {
		t.Fatalf("expected UNREAD, got %s", message.Status)
	}

	sender, err := usersRepo.GetByEmail(context.Background(), "tamu@tandur.id")
	if err != nil {
		t.Fatalf("expected walk-in identity created: %v", err)
	}
	if sender.Name != "tamu" {
		t.Fatalf("expected name from email local part, got %q", sender.Name)
	}
	if message.UserID != sender.ID {
		t.Fatal("expected message bound to the new identity")
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected one stored message, got %d", len(repo.messages))
	}
}

func TestSendReusesExistingIdentity(t *testing.T) {
	svc, _, usersRepo := newTestService(t)
	existing := &models.User{ID: uuid.New(), Email: "budi@tandur.id", Name: "Budi"}
	usersRepo.users[existing.ID] = existing

	message, err := svc.Send(context.Background(), SendParams{
		Email:   "budi@tandur.id",
		Name:    "Nama Lain",
		Message: "Halo admin",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.UserID != existing.ID {
		t.Fatal("expected message bound to the existing identity")
	}
	if len(usersRepo.users) != 1 {
		t.Fatal("expected no duplicate identity")
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Send(context.Background(), SendParams{Email: "", Message: "x"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Send(context.Background(), SendParams{Email: "a@b.id", Message: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestHistoryChronologicalAndScoped(t *testing.T) {
	svc, repo, usersRepo := newTestService(t)
	user := &models.User{ID: uuid.New(), Email: "budi@tandur.id", Name: "Budi"}
	other := &models.User{ID: uuid.New(), Email: "lain@tandur.id", Name: "Lain"}
	usersRepo.users[user.ID] = user
	usersRepo.users[other.ID] = other

	older := &models.CsMessage{ID: uuid.New(), UserID: user.ID, Message: "pertama", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.CsMessage{ID: uuid.New(), UserID: user.ID, Message: "kedua", CreatedAt: time.Now()}
	foreign := &models.CsMessage{ID: uuid.New(), UserID: other.ID, Message: "punya orang", CreatedAt: time.Now()}
	repo.messages[older.ID] = older
	repo.messages[newer.ID] = newer
	repo.messages[foreign.ID] = foreign

	history, err := svc.History(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Message != "pertama" || history[1].Message != "kedua" {
		t.Fatalf("expected own messages oldest first, got %+v", history)
	}
}

func TestDeleteThread(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := uuid.New()
	message := &models.CsMessage{ID: uuid.New(), UserID: userID, Message: "hapus saya"}
	repo.messages[message.ID] = message

	if err := svc.DeleteThread(context.Background(), userID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.messages) != 0 {
		t.Fatal("expected thread removed")
	}
}

func TestAdminReplySetsStatusAndTimestamp(t *testing.T) {
	svc, repo, _ := newTestService(t)
	message := &models.CsMessage{ID: uuid.New(), UserID: uuid.New(), Message: "tolong", Status: enums.CsMessageStatusUnread}
	repo.messages[message.ID] = message

	replied, err := svc.AdminReply(context.Background(), "Admin@Tandur.ID", message.ID, "Sudah kami proses.")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if replied.Status != enums.CsMessageStatusReplied {
		t.Fatalf("expected REPLIED, got %s", replied.Status)
	}
	if replied.AdminReply == nil || *replied.AdminReply != "Sudah kami proses." {
		t.Fatal("expected reply text persisted")
	}
	if replied.AdminEmail == nil || *replied.AdminEmail != "admin@tandur.id" {
		t.Fatal("expected normalized admin email")
	}
	if replied.RepliedAt == nil {
		t.Fatal("expected replied_at stamped")
	}
}

func TestAdminReplyMissingMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AdminReply(context.Background(), "admin@tandur.id", uuid.New(), "halo")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAdminMarkReadKeepsReplied(t *testing.T) {
	svc, repo, _ := newTestService(t)
	replied := &models.CsMessage{ID: uuid.New(), UserID: uuid.New(), Message: "a", Status: enums.CsMessageStatusReplied}
	unread := &models.CsMessage{ID: uuid.New(), UserID: uuid.New(), Message: "b", Status: enums.CsMessageStatusUnread}
	repo.messages[replied.ID] = replied
	repo.messages[unread.ID] = unread

	if err := svc.AdminMarkRead(context.Background(), unread.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if repo.messages[unread.ID].Status != enums.CsMessageStatusRead {
		t.Fatal("expected READ")
	}

	if err := svc.AdminMarkRead(context.Background(), replied.ID); err != nil {
		t.Fatalf("mark read replied: %v", err)
	}
	if repo.messages[replied.ID].Status != enums.CsMessageStatusReplied {
		t.Fatal("expected REPLIED preserved")
	}
}

func TestAdminListEnrichesSender(t *testing.T) {
	svc, repo, usersRepo := newTestService(t)
	sender := &models.User{ID: uuid.New(), Email: "budi@tandur.id", Name: "Budi"}
	usersRepo.users[sender.ID] = sender

	older := &models.CsMessage{ID: uuid.New(), UserID: sender.ID, Message: "pertama", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.CsMessage{ID: uuid.New(), UserID: sender.ID, Message: "kedua", CreatedAt: time.Now()}
	repo.messages[older.ID] = older
	repo.messages[newer.ID] = newer

	listed, err := svc.AdminList(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Message != "kedua" {
		t.Fatalf("expected newest first, got %+v", listed)
	}
	if listed[0].Sender == nil || listed[0].Sender.Email != "budi@tandur.id" {
		t.Fatal("expected sender enrichment")
	}
}
