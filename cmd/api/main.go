package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tandur-id/tandur-backend/api/routes"
	"github.com/tandur-id/tandur-backend/internal/applications"
	"github.com/tandur-id/tandur-backend/internal/auth"
	"github.com/tandur-id/tandur-backend/internal/chatbot"
	"github.com/tandur-id/tandur-backend/internal/cschat"
	"github.com/tandur-id/tandur-backend/internal/feed"
	"github.com/tandur-id/tandur-backend/internal/products"
	"github.com/tandur-id/tandur-backend/internal/profileviews"
	"github.com/tandur-id/tandur-backend/internal/projects"
	"github.com/tandur-id/tandur-backend/internal/stats"
	"github.com/tandur-id/tandur-backend/internal/users"
	"github.com/tandur-id/tandur-backend/pkg/auth/session"
	"github.com/tandur-id/tandur-backend/pkg/config"
	"github.com/tandur-id/tandur-backend/pkg/db"
	"github.com/tandur-id/tandur-backend/pkg/groq"
	"github.com/tandur-id/tandur-backend/pkg/logger"
	"github.com/tandur-id/tandur-backend/pkg/metrics"
	"github.com/tandur-id/tandur-backend/pkg/migrate"
	"github.com/tandur-id/tandur-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	groqClient, err := groq.New(cfg.Groq)
	if err != nil {
		// the chatbot endpoint degrades to 500s when unconfigured
		logg.Warn(context.Background(), "groq client unavailable, chatbot disabled: "+err.Error())
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	projectsRepo := projects.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	feedRepo := feed.NewRepository(gormDB)
	applicationsRepo := applications.NewRepository(gormDB)
	chatbotRepo := chatbot.NewRepository(gormDB)
	cschatRepo := cschat.NewRepository(gormDB)
	statsRepo := stats.NewRepository(gormDB)
	viewsRepo := profileviews.NewRepository(gormDB)

	authService, err := auth.NewService(usersRepo, sessionManager, redisClient, cfg.JWT, cfg.Password, cfg.Verification, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	applicationsService, err := applications.NewService(applicationsRepo, usersRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create applications service", err)
		os.Exit(1)
	}
	projectsService, err := projects.NewService(projectsRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}
	productsService, err := products.NewService(productsRepo, projectsRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	feedService, err := feed.NewService(feedRepo, projectsRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed service", err)
		os.Exit(1)
	}
	var chatbotService chatbot.Service
	if groqClient != nil {
		chatbotService, err = chatbot.NewService(chatbotRepo, groqClient, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create chatbot service", err)
			os.Exit(1)
		}
	}
	cschatService, err := cschat.NewService(cschatRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cs chat service", err)
		os.Exit(1)
	}
	statsService, err := stats.NewService(statsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}
	viewsService, err := profileviews.NewService(viewsRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile views service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, routes.Services{
		Auth:         authService,
		Users:        usersService,
		Applications: applicationsService,
		Projects:     projectsService,
		Products:     productsService,
		Feed:         feedService,
		Chatbot:      chatbotService,
		CsChat:       cschatService,
		Stats:        statsService,
		ProfileViews: viewsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
