package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/tandur-id/tandur-backend/internal/users"
	pkgauth "github.com/tandur-id/tandur-backend/pkg/auth"
	"github.com/tandur-id/tandur-backend/pkg/auth/session"
	"github.com/tandur-id/tandur-backend/pkg/config"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
	"github.com/tandur-id/tandur-backend/pkg/security"
)

const verificationCodeLength = 6

// sessionManager is the refresh-session surface the service needs.
type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// codeStore holds short-lived verification codes.
type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	VerificationCodeKey(email string) string
}

// Tokens is an access/refresh pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult couples the authenticated identity with its tokens.
type AuthResult struct {
	User   *models.User `json:"user"`
	Tokens Tokens       `json:"tokens"`
}

// Service defines registration, login, and session operations.
type Service interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Tokens, error)
	SendVerificationCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
}

type service struct {
	repo     users.Repository
	sessions sessionManager
	codes    codeStore
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	verCfg   config.VerificationConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires auth dependencies.
func NewService(
	repo users.Repository,
	sessions *session.Manager,
	codes codeStore,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	verCfg config.VerificationConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session manager required")
	}
	if codes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "verification code store required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		codes:    codes,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		verCfg:   verCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if len(password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// OAuth-style accounts without credentials may claim a password.
		if existing.PasswordHash != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email sudah terdaftar")
		}
		updates := map[string]any{"password_hash": hash}
		if strings.TrimSpace(name) != "" {
			updates["name"] = strings.TrimSpace(name)
		}
		// rows created without a role fall back to the buyer default so
		// token minting never sees an empty role
		if !existing.Role.IsValid() {
			updates["role"] = enums.UserRolePembeli
		}
		if err := s.repo.Update(ctx, existing.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach credentials")
		}
		return s.issueTokens(ctx, existing.ID)

	case db.IsNotFound(err):
		user := &models.User{
			Email:        email,
			PasswordHash: &hash,
			Name:         strings.TrimSpace(name),
			Role:         enums.UserRolePembeli,
		}
		if user.Name == "" {
			if at := strings.Index(email, "@"); at > 0 {
				user.Name = email[:at]
			} else {
				user.Name = email
			}
		}
		if err := s.repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email sudah terdaftar")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		return s.issueTokens(ctx, user.ID)

	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user.ID)
}

func (s *service) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return s.issueTokens(ctx, user.ID)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email atau password salah")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email atau password salah")
	}

	ok, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email atau password salah")
	}
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &AuthResult{
		User:   user,
		Tokens: Tokens{AccessToken: accessToken, RefreshToken: refreshToken},
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Tokens, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if err == session.ErrInvalidRefreshToken {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user unavailable")
	}

	newAccess, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &Tokens{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

func (s *service) SendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "email tidak terdaftar")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	}

	code, err := security.GenerateVerificationCode(verificationCodeLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}

	if err := s.codes.Set(ctx, s.codes.VerificationCodeKey(email), code, s.verCfg.CodeTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store code")
	}

	// email delivery is out of scope; the code is surfaced via logs only
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"email": email, "code": code}), "verification code issued")
	}
	return nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and code required")
	}

	key := s.codes.VerificationCodeKey(email)
	stored, err := s.codes.Get(ctx, key)
	if err != nil {
		if err == redislib.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "kode verifikasi salah atau kedaluwarsa")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "kode verifikasi salah atau kedaluwarsa")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "email tidak terdaftar")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	}

	now := s.now().UTC()
	if err := s.repo.Update(ctx, user.ID, map[string]any{"email_verified_at": now}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp verification")
	}

	_ = s.codes.Del(ctx, key)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
