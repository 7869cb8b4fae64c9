package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandur-id/tandur-backend/api/controllers"
	"github.com/tandur-id/tandur-backend/api/middleware"
	appsvc "github.com/tandur-id/tandur-backend/internal/applications"
	authsvc "github.com/tandur-id/tandur-backend/internal/auth"
	chatsvc "github.com/tandur-id/tandur-backend/internal/chatbot"
	cssvc "github.com/tandur-id/tandur-backend/internal/cschat"
	feedsvc "github.com/tandur-id/tandur-backend/internal/feed"
	productsvc "github.com/tandur-id/tandur-backend/internal/products"
	viewsvc "github.com/tandur-id/tandur-backend/internal/profileviews"
	projectsvc "github.com/tandur-id/tandur-backend/internal/projects"
	statsvc "github.com/tandur-id/tandur-backend/internal/stats"
	usersvc "github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/auth/session"
	"github.com/tandur-id/tandur-backend/pkg/config"
	"github.com/tandur-id/tandur-backend/pkg/enums"
	"github.com/tandur-id/tandur-backend/pkg/logger"
	"github.com/tandur-id/tandur-backend/pkg/metrics"
	"github.com/tandur-id/tandur-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth         authsvc.Service
	Users        usersvc.Service
	Applications appsvc.Service
	Projects     projectsvc.Service
	Products     productsvc.Service
	Feed         feedsvc.Service
	Chatbot      chatsvc.Service
	CsChat       cssvc.Service
	Stats        statsvc.Service
	ProfileViews viewsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	maybeAuth := middleware.OptionalAuth(cfg.JWT, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
			r.Post("/send-verification-code", controllers.SendVerificationCode(svcs.Auth, logg))
			r.Post("/verify-code", controllers.VerifyCode(svcs.Auth, logg))
		})

		// public marketplace surfaces
		r.Get("/products", controllers.ListProducts(svcs.Products, logg))
		r.Get("/farmers", controllers.ListFarmers(svcs.Users, logg))
		r.Get("/stats", controllers.PlatformStats(svcs.Stats, logg))
		r.Post("/chat", controllers.Chat(svcs.Chatbot, logg))
		r.With(maybeAuth).Get("/updates", controllers.ListFeed(svcs.Feed, logg))
		r.Get("/comment/{updateId}", controllers.ListComments(svcs.Feed, logg))
		r.Get("/proyek/{id}", controllers.ProjectDetail(svcs.Projects, logg))
		r.Get("/proyek/{id}/fase/{faseId}", controllers.GetProjectFase(svcs.Projects, logg))
		r.With(maybeAuth).Post("/profile-view", controllers.RecordProfileView(svcs.ProfileViews, logg))
		r.Post("/cs-chat", controllers.SendCsMessage(svcs.CsChat, logg))

		// authenticated surfaces
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/daftar-petani", controllers.SubmitPetaniApplication(svcs.Applications, logg))
			r.Get("/petani-application/status", controllers.PetaniApplicationStatus(svcs.Applications, logg))

			r.Route("/user", func(r chi.Router) {
				r.Get("/profile", controllers.UserProfile(svcs.Users, logg))
				r.Patch("/profile", controllers.UpdateUserProfile(svcs.Users, logg))
				r.Delete("/delete", controllers.DeleteUserAccount(svcs.Users, logg))
				r.Get("/projects", controllers.UserProjects(svcs.Users, logg))
			})

			r.Post("/proyek", controllers.CreateProject(svcs.Projects, logg))
			r.Patch("/proyek/{id}", controllers.UpdateProject(svcs.Projects, logg))
			r.Delete("/proyek/{id}", controllers.DeleteProject(svcs.Projects, logg))
			r.Patch("/proyek/{id}/fase/{faseId}", controllers.UpdateProjectFase(svcs.Projects, logg))

			r.Post("/products", controllers.CreateProduct(svcs.Products, logg))
			r.Patch("/products/{id}", controllers.UpdateProduct(svcs.Products, logg))
			r.Delete("/products/{id}", controllers.DeleteProduct(svcs.Products, logg))

			r.Post("/farming-update", controllers.CreateFarmingUpdate(svcs.Feed, logg))
			r.Patch("/farming-update/{id}", controllers.EditFarmingUpdate(svcs.Feed, logg))
			r.Delete("/farming-update/{id}", controllers.DeleteFarmingUpdate(svcs.Feed, logg))
			r.Post("/like", controllers.LikeUpdate(svcs.Feed, logg))
			r.Delete("/like", controllers.UnlikeUpdate(svcs.Feed, logg))
			r.Post("/comment", controllers.CreateComment(svcs.Feed, logg))

			r.Get("/dashboard/stats", controllers.DashboardStats(svcs.Stats, logg))

			r.Get("/cs-chat/history", controllers.CsHistory(svcs.CsChat, logg))
			r.Delete("/cs-chat/delete", controllers.DeleteCsThread(svcs.CsChat, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/auth/login", controllers.AdminAuthLogin(svcs.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

				r.Get("/petani-applications", controllers.AdminListPetaniApplications(svcs.Applications, logg))
				r.Patch("/petani-applications", controllers.AdminReviewPetaniApplication(svcs.Applications, logg))
				r.Delete("/petani-applications/{id}", controllers.AdminDeletePetaniApplication(svcs.Applications, logg))

				r.Get("/messages", controllers.AdminListMessages(svcs.CsChat, logg))
				r.Patch("/messages/{id}/read", controllers.AdminMarkMessageRead(svcs.CsChat, logg))
				r.Post("/reply", controllers.AdminReplyMessage(svcs.CsChat, svcs.Users, logg))
			})
		})
	})

	return r
}
