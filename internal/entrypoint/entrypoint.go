package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/campaigner/internal/audit"
	"github.com/mrlokans/campaigner/internal/auth"
	"github.com/mrlokans/campaigner/internal/config"
	"github.com/mrlokans/campaigner/internal/database"
	auditRepo "github.com/mrlokans/campaigner/internal/database/audit"
	"github.com/mrlokans/campaigner/internal/database/campaigns"
	"github.com/mrlokans/campaigner/internal/database/users"
	http_controllers "github.com/mrlokans/campaigner/internal/http"
	"github.com/mrlokans/campaigner/internal/importers"
	"github.com/mrlokans/campaigner/internal/logger"
	"github.com/mrlokans/campaigner/internal/scheduler"
	"github.com/mrlokans/campaigner/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zap.L().Info("shutting down server", zap.String("signal", sig.String()), zap.Duration("timeout", timeout))
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}

	// Stop background work after the last request has finished.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	zap.L().Info("server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	log, err := logger.Initialize(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	zap.L().Info("starting campaigner", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zap.L().Error("error closing database", zap.Error(err))
		}
	}()

	campaignRepo := campaigns.NewRepository(db.DB)
	pipeline := importers.NewPipeline(campaignRepo, importers.Options{
		DefaultCampaignTitle: cfg.Import.DefaultCampaignTitle,
		MaxEntrySize:         cfg.Import.MaxEntryBytes(),
	})

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	// Registered first so it runs last: pending events need the database.
	defer auditService.Wait()

	var auditor *audit.Auditor
	if cfg.Audit.SaveUploads {
		auditor = audit.NewAuditor(cfg.Audit.Dir)
		zap.L().Info("archiving raw uploads", zap.String("dir", cfg.Audit.Dir))
	}

	// Audit cleanup goes through the task queue when it is enabled and runs
	// inline otherwise.
	var enqueuer scheduler.AuditCleanupEnqueuer = scheduler.InlineCleanup{Cleaner: auditService}
	var taskStatus http_controllers.TaskStatusReader
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				zap.L().Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService, cfg.Audit.RetentionDays))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		enqueuer = taskClient
		taskStatus = taskClient
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(enqueuer, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		return err
	}

	routerCfg := http_controllers.RouterConfig{
		Importer:       pipeline,
		Campaigns:      campaignRepo,
		Database:       db,
		Auditor:        auditor,
		AuditLog:       auditService,
		MaxUploadBytes: cfg.Import.MaxUploadBytes(),
		TaskStatus:     taskStatus,
		AuditCleanup:   cleanupScheduler,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	if err := configureAuth(cfg, db, &routerCfg); err != nil {
		return err
	}

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// configureAuth fills the authentication part of routerCfg.
func configureAuth(cfg *config.Config, db *database.Database, routerCfg *http_controllers.RouterConfig) error {
	if cfg.Auth.Mode != config.AuthModeLocal {
		if cfg.Auth.Mode != config.AuthModeNone {
			return fmt.Errorf("unknown AUTH_MODE %q", cfg.Auth.Mode)
		}
		zap.L().Info("authentication mode: none")
		routerCfg.AuthMiddleware = auth.NewMiddleware(nil, nil, cfg.Auth)
		return nil
	}

	zap.L().Info("authentication mode: local")
	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return err
	}

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			return fmt.Errorf("failed to generate CSRF secret: %w", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		zap.L().Warn("generated session secret; set AUTH_SESSION_SECRET to keep sessions across restarts")
	}

	if hasUsers, err := authService.HasUsers(); err == nil && !hasUsers {
		zap.L().Warn("no users found; POST /api/auth/setup to create an administrator")
	}

	routerCfg.AuthService = authService
	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
	routerCfg.SessionManager = sessionManager
	routerCfg.CSRFSecret = csrfSecret
	return nil
}
