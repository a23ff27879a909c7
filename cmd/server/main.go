package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zippyboards/backend/internal/cache"
	"github.com/zippyboards/backend/internal/config"
	"github.com/zippyboards/backend/internal/handler"
	"github.com/zippyboards/backend/internal/logging"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/internal/service"
	"github.com/zippyboards/backend/pkg/auth"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadServer()
	if err != nil {
		// logging is not configured yet
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// appPool runs reads on behalf of users; servicePool runs membership writes.
	appPool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{})
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer appPool.Close()

	servicePool := appPool
	if cfg.DatabaseServiceURL != cfg.DatabaseURL {
		servicePool, err = repository.NewPool(ctx, cfg.DatabaseServiceURL, repository.PoolOptions{MaxConns: 4})
		if err != nil {
			logging.Fatal("failed to connect to service database", "error", err)
		}
		defer servicePool.Close()
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		// the page cache is optional; run without it
		slog.Warn("redis unavailable, page cache disabled", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}
	pages := cache.NewProjectPageCache(rdb, cfg.PageCacheTTL.Duration())

	userRepo := repository.NewPgUserRepository(appPool)
	projectRepo := repository.NewPgProjectRepository(appPool)
	memberRepo := repository.NewPgMemberRepository(appPool)
	adminMemberRepo := repository.NewPgMemberRepository(servicePool)
	taskRepo := repository.NewPgTaskRepository(appPool)
	sessionRepo := repository.NewPgSessionRepository(appPool)
	waitlistRepo := repository.NewPgWaitlistRepository(appPool)

	authService := service.NewAuthService(userRepo)
	sessionService := service.NewSessionService(sessionRepo, cfg.SessionTTL.Duration())
	projectService := service.NewProjectService(projectRepo, memberRepo, pages)
	membershipService := service.NewMembershipService(memberRepo, adminMemberRepo, userRepo, pages)
	taskService := service.NewTaskService(taskRepo, memberRepo)
	waitlistService := service.NewWaitlistService(waitlistRepo)

	go sessionService.PurgeExpired(ctx, time.Hour)

	h := handler.New(appPool, cfg.AppURL)
	authHandler := handler.NewAuthHandler(authService, sessionService, handler.AuthConfig{
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		BackendURL:         cfg.BackendURL,
		AppURL:             cfg.AppURL,
		Secure:             cfg.Production(),
		SessionTTL:         sessionService.TTL(),
	})
	meHandler := handler.NewMeHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService, membershipService)
	taskHandler := handler.NewTaskHandler(taskService)
	waitlistHandler := handler.NewWaitlistHandler(waitlistService)

	requireAuth := auth.RequireAuth(sessionService)
	optionalAuth := auth.OptionalAuth(sessionService)
	wrapAuth := func(f http.HandlerFunc) http.Handler { return requireAuth(f) }
	// membership actions report "authentication required" in their own result
	wrapAction := func(f http.HandlerFunc) http.Handler { return optionalAuth(f) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/session", wrapAction(authHandler.Session))
	mux.HandleFunc("GET /api/auth/github/login", authHandler.GitHubLoginURL)
	mux.HandleFunc("GET /auth/callback", authHandler.Callback)
	mux.HandleFunc("POST /api/waitlist", waitlistHandler.Join)

	mux.Handle("GET /api/me", wrapAuth(meHandler.Me))

	mux.Handle("GET /api/projects", wrapAuth(projectHandler.List))
	mux.Handle("POST /api/projects", wrapAuth(projectHandler.Create))
	mux.Handle("GET /api/projects/{id}", wrapAuth(projectHandler.Get))
	mux.Handle("PUT /api/projects/{id}", wrapAuth(projectHandler.Update))
	mux.Handle("DELETE /api/projects/{id}", wrapAuth(projectHandler.Delete))
	mux.Handle("GET /api/projects/{id}/members", wrapAuth(projectHandler.Members))
	mux.Handle("POST /api/projects/{id}/members", wrapAction(projectHandler.AddMember))
	mux.Handle("DELETE /api/projects/{id}/members/{userID}", wrapAction(projectHandler.RemoveMember))

	mux.Handle("GET /api/projects/{id}/tasks", wrapAuth(taskHandler.List))
	mux.Handle("POST /api/projects/{id}/tasks", wrapAuth(taskHandler.Create))
	mux.Handle("GET /api/projects/{id}/board", wrapAuth(taskHandler.Board))
	mux.Handle("PATCH /api/tasks/{id}", wrapAuth(taskHandler.Update))
	mux.Handle("PATCH /api/tasks/{id}/status", wrapAuth(taskHandler.UpdateStatus))
	mux.Handle("DELETE /api/tasks/{id}", wrapAuth(taskHandler.Delete))

	limiter := handler.NewRateLimiter(ctx, cfg.RateLimitPerMinute)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.RequestLogger(handler.SecurityHeaders(h.CORS(limiter.Middleware(mux)))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
