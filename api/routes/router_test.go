package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	appsvc "github.com/tandur-id/tandur-backend/internal/applications"
	authsvc "github.com/tandur-id/tandur-backend/internal/auth"
	chatsvc "github.com/tandur-id/tandur-backend/internal/chatbot"
	cssvc "github.com/tandur-id/tandur-backend/internal/cschat"
	feedsvc "github.com/tandur-id/tandur-backend/internal/feed"
	productsvc "github.com/tandur-id/tandur-backend/internal/products"
	projectsvc "github.com/tandur-id/tandur-backend/internal/projects"
	statsvc "github.com/tandur-id/tandur-backend/internal/stats"
	usersvc "github.com/tandur-id/tandur-backend/internal/users"
	pkgAuth "github.com/tandur-id/tandur-backend/pkg/auth"
	"github.com/tandur-id/tandur-backend/pkg/auth/session"
	"github.com/tandur-id/tandur-backend/pkg/config"
	"github.com/tandur-id/tandur-backend/pkg/db/models"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"github.com/tandur-id/tandur-backend/pkg/logger"
	"github.com/tandur-id/tandur-backend/pkg/redis"
)

// sentinel that must never appear in a rejected admin response body.
const confidentialApplicant = "Pak Karta Rahasia"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, email, password, name string) (*authsvc.AuthResult, error) {
	return nil, nil
}

func (stubAuthService) Login(ctx context.Context, email, password string) (*authsvc.AuthResult, error) {
	return nil, nil
}

func (stubAuthService) AdminLogin(ctx context.Context, email, password string) (*authsvc.AuthResult, error) {
	return nil, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*authsvc.Tokens, error) {
	return nil, nil
}

func (stubAuthService) SendVerificationCode(ctx context.Context, email string) error { return nil }

func (stubAuthService) VerifyCode(ctx context.Context, email, code string) error { return nil }

type stubUsersService struct{}

func (stubUsersService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return &models.User{ID: userID, Email: "admin@tandur.id"}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, params usersvc.UpdateProfileParams) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func (stubUsersService) DeleteAccount(ctx context.Context, userID uuid.UUID) error { return nil }

func (stubUsersService) OwnProjects(ctx context.Context, userID uuid.UUID) ([]models.ProyekTani, error) {
	return nil, nil
}

func (stubUsersService) Farmers(ctx context.Context, listType string, limit int) ([]usersvc.FarmerCard, error) {
	return []usersvc.FarmerCard{}, nil
}

// stubApplicationsService leaks the sentinel name on purpose so tests can
// prove blocked requests never reach it.
type stubApplicationsService struct {
	listCalls int
}

func (s *stubApplicationsService) Submit(ctx context.Context, userID uuid.UUID, submission appsvc.Submission) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *stubApplicationsService) AdminList(ctx context.Context, params appsvc.ListParams) (*appsvc.ListResult, error) {
	s.listCalls++
	app := appsvc.AdminApplication{}
	app.Nama = confidentialApplicant
	return &appsvc.ListResult{Applications: []appsvc.AdminApplication{app}}, nil
}

func (s *stubApplicationsService) Review(ctx context.Context, reviewerID uuid.UUID, params appsvc.ReviewParams) (*appsvc.AdminApplication, error) {
	return &appsvc.AdminApplication{}, nil
}

func (s *stubApplicationsService) AdminDelete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubApplicationsService) OwnStatus(ctx context.Context, userID uuid.UUID) (*appsvc.StatusResult, error) {
	return &appsvc.StatusResult{}, nil
}

type stubProjectsService struct{}

func (stubProjectsService) Create(ctx context.Context, petaniID uuid.UUID, params projectsvc.CreateParams) (*models.ProyekTani, error) {
	return &models.ProyekTani{}, nil
}

func (stubProjectsService) Detail(ctx context.Context, projectID uuid.UUID) (*projectsvc.ProjectDetail, error) {
	return &projectsvc.ProjectDetail{}, nil
}

func (stubProjectsService) Update(ctx context.Context, callerID, projectID uuid.UUID, params projectsvc.UpdateParams) (*models.ProyekTani, error) {
	return &models.ProyekTani{}, nil
}

func (stubProjectsService) Delete(ctx context.Context, callerID, projectID uuid.UUID) error {
	return nil
}

func (stubProjectsService) GetFase(ctx context.Context, projectID, faseID uuid.UUID) (*models.FaseProyek, error) {
	return &models.FaseProyek{}, nil
}

func (stubProjectsService) UpdateFase(ctx context.Context, callerID, projectID, faseID uuid.UUID, params projectsvc.UpdateFaseParams) (*models.FaseProyek, error) {
	return &models.FaseProyek{}, nil
}

type stubProductsService struct{}

func (stubProductsService) List(ctx context.Context, params productsvc.ListParams) ([]productsvc.ListedProduct, error) {
	return []productsvc.ListedProduct{}, nil
}

func (stubProductsService) Create(ctx context.Context, callerID uuid.UUID, params productsvc.CreateParams) (*models.Produk, error) {
	return &models.Produk{}, nil
}

func (stubProductsService) Update(ctx context.Context, callerID, productID uuid.UUID, params productsvc.UpdateParams) (*models.Produk, error) {
	return &models.Produk{}, nil
}

func (stubProductsService) Delete(ctx context.Context, callerID, productID uuid.UUID) error {
	return nil
}

type stubFeedService struct{}

func (stubFeedService) List(ctx context.Context, viewerID uuid.UUID, sort string, limit int) ([]feedsvc.FeedEntry, error) {
	return []feedsvc.FeedEntry{}, nil
}

func (stubFeedService) CreateUpdate(ctx context.Context, callerID uuid.UUID, params feedsvc.CreateUpdateParams) (*models.FarmingUpdate, error) {
	return &models.FarmingUpdate{}, nil
}

func (stubFeedService) UpdateUpdate(ctx context.Context, callerID, updateID uuid.UUID, params feedsvc.UpdateUpdateParams) (*models.FarmingUpdate, error) {
	return &models.FarmingUpdate{}, nil
}

func (stubFeedService) DeleteUpdate(ctx context.Context, callerID, updateID uuid.UUID) error {
	return nil
}

func (stubFeedService) Like(ctx context.Context, callerID, updateID uuid.UUID) error { return nil }

func (stubFeedService) Unlike(ctx context.Context, callerID, updateID uuid.UUID) error { return nil }

func (stubFeedService) Comment(ctx context.Context, callerID, updateID uuid.UUID, content string) (*models.Comment, error) {
	return &models.Comment{}, nil
}

func (stubFeedService) Comments(ctx context.Context, updateID uuid.UUID) ([]feedsvc.CommentEntry, error) {
	return []feedsvc.CommentEntry{}, nil
}

type stubChatService struct{}

func (stubChatService) Ask(ctx context.Context, message string) (*chatsvc.Answer, error) {
	return &chatsvc.Answer{Intent: chatsvc.IntentGeneral, Reply: "Halo!"}, nil
}

type stubCsService struct{}

func (stubCsService) Send(ctx context.Context, params cssvc.SendParams) (*models.CsMessage, error) {
	return &models.CsMessage{}, nil
}

func (stubCsService) History(ctx context.Context, callerID uuid.UUID) ([]models.CsMessage, error) {
	return []models.CsMessage{}, nil
}

func (stubCsService) DeleteThread(ctx context.Context, callerID uuid.UUID) error { return nil }

func (stubCsService) AdminList(ctx context.Context) ([]cssvc.AdminMessage, error) {
	return []cssvc.AdminMessage{}, nil
}

func (stubCsService) AdminReply(ctx context.Context, adminEmail string, messageID uuid.UUID, reply string) (*models.CsMessage, error) {
	return &models.CsMessage{}, nil
}

func (stubCsService) AdminMarkRead(ctx context.Context, messageID uuid.UUID) error { return nil }

type stubStatsService struct{}

func (stubStatsService) Platform(ctx context.Context) (*statsvc.PlatformStats, error) {
	return &statsvc.PlatformStats{}, nil
}

func (stubStatsService) Dashboard(ctx context.Context, petaniID uuid.UUID) (*statsvc.DashboardStats, error) {
	return &statsvc.DashboardStats{}, nil
}

type stubViewsService struct{}

func (stubViewsService) Record(ctx context.Context, petaniID, viewerID uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func testServices(apps appsvc.Service) Services {
	return Services{
		Auth:         stubAuthService{},
		Users:        stubUsersService{},
		Applications: apps,
		Projects:     stubProjectsService{},
		Products:     stubProductsService{},
		Feed:         stubFeedService{},
		Chatbot:      stubChatService{},
		CsChat:       stubCsService{},
		Stats:        stubStatsService{},
		ProfileViews: stubViewsService{},
	}
}

func newTestRouter(cfg *config.Config, apps appsvc.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessions{},
		nil, // metrics stay off in routing tests
		testServices(apps),
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), &stubApplicationsService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicSurfacesSkipAuth(t *testing.T) {
	router := newTestRouter(testConfig(), &stubApplicationsService{})

	for _, target := range []string{"/api/products", "/api/farmers", "/api/stats", "/api/updates"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d: %s", target, resp.Code, resp.Body.String())
		}
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubApplicationsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubApplicationsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/petani-application/status", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRolePembeli))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	apps := &stubApplicationsService{}
	router := newTestRouter(cfg, apps)

	anonymous := httptest.NewRequest(http.MethodGet, "/api/admin/petani-applications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), confidentialApplicant) {
		t.Fatalf("unauthenticated response leaked application data: %s", resp.Body.String())
	}

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/petani-applications", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRolePetani))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), confidentialApplicant) {
		t.Fatalf("non-admin response leaked application data: %s", resp.Body.String())
	}
	if apps.listCalls != 0 {
		t.Fatalf("expected blocked requests to never reach the service, got %d calls", apps.listCalls)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/petani-applications", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), confidentialApplicant) {
		t.Fatalf("expected admin listing to include applications: %s", resp.Body.String())
	}
}

func TestAdminMessageRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubApplicationsService{})

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRolePembeli))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin messages got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin messages got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGuestUpdatesFeedHasNoViewer(t *testing.T) {
	router := newTestRouter(testConfig(), &stubApplicationsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/updates?sort=popular", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected guest feed to be reachable, got %d", resp.Code)
	}
}
