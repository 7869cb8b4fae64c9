package cschat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

// SenderSummary is the message author embedded in admin listings.
type SenderSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image"`
}

// AdminMessage is one CS message enriched for the admin inbox.
type AdminMessage struct {
	models.CsMessage
	Sender *SenderSummary `json:"sender"`
}

// SendParams carries an incoming CS message. Email identifies the sender;
// an account is created on the fly when none exists yet.
type SendParams struct {
	Email   string
	Name    string
	Message string
}

// Service defines the customer-service messaging operations.
type Service interface {
	Send(ctx context.Context, params SendParams) (*models.CsMessage, error)
	History(ctx context.Context, callerID uuid.UUID) ([]models.CsMessage, error)
	DeleteThread(ctx context.Context, callerID uuid.UUID) error
	AdminList(ctx context.Context) ([]AdminMessage, error)
	AdminReply(ctx context.Context, adminEmail string, messageID uuid.UUID, reply string) (*models.CsMessage, error)
	AdminMarkRead(ctx context.Context, messageID uuid.UUID) error
}

type service struct {
	repo      Repository
	usersRepo users.Repository
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires CS chat dependencies.
func NewService(repo Repository, usersRepo users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cschat repository required")
	}
	if usersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, usersRepo: usersRepo, logg: logg, now: time.Now}, nil
}

func (s *service) Send(ctx context.Context, params SendParams) (*models.CsMessage, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	content := strings.TrimSpace(params.Message)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email wajib diisi")
	}
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pesan tidak boleh kosong")
	}

	sender, err := s.usersRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case db.IsNotFound(err):
		// walk-in contact without an account; register a bare identity so
		// the thread has an owner
		name := strings.TrimSpace(params.Name)
		if name == "" {
			if at := strings.Index(email, "@"); at > 0 {
				name = email[:at]
			} else {
				name = email
			}
		}
		sender = &models.User{Email: email, Name: name, Role: enums.UserRolePembeli}
		if err := s.usersRepo.Create(ctx, sender); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sender")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sender")
	}

	message := &models.CsMessage{
		UserID:  sender.ID,
		Message: content,
		Status:  enums.CsMessageStatusUnread,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return message, nil
}

func (s *service) History(ctx context.Context, callerID uuid.UUID) ([]models.CsMessage, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	messages, err := s.repo.ListByUser(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	if messages == nil {
		messages = []models.CsMessage{}
	}
	return messages, nil
}

func (s *service) DeleteThread(ctx context.Context, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.repo.DeleteByUser(ctx, callerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete thread")
	}
	return nil
}

func (s *service) AdminList(ctx context.Context) ([]AdminMessage, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	messages := make([]AdminMessage, 0, len(rows))
	for _, row := range rows {
		entry := AdminMessage{CsMessage: row}
		if sender, err := s.usersRepo.GetByID(ctx, row.UserID); err == nil {
			entry.Sender = &SenderSummary{
				ID:    sender.ID,
				Name:  sender.Name,
				Email: sender.Email,
				Image: sender.Image,
			}
		} else if !db.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "userId", row.UserID.String()), "cs sender lookup failed")
		}
		messages = append(messages, entry)
	}
	return messages, nil
}

func (s *service) AdminReply(ctx context.Context, adminEmail string, messageID uuid.UUID, reply string) (*models.CsMessage, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "balasan tidak boleh kosong")
	}

	if _, err := s.repo.GetByID(ctx, messageID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pesan tidak ditemukan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}

	now := s.now().UTC()
	updates := map[string]any{
		"admin_reply": reply,
		"admin_email": strings.ToLower(strings.TrimSpace(adminEmail)),
		"status":      enums.CsMessageStatusReplied,
		"replied_at":  now,
	}
	if err := s.repo.Update(ctx, messageID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update message")
	}

	updated, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload message")
	}
	return updated, nil
}

func (s *service) AdminMarkRead(ctx context.Context, messageID uuid.UUID) error {
	message, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pesan tidak ditemukan")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}
	// replies already imply the message was read
	if message.Status == enums.CsMessageStatusReplied {
		return nil
	}
	if err := s.repo.Update(ctx, messageID, map[string]any{"status": enums.CsMessageStatusRead}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update message")
	}
	return nil
}
