package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saaskit-io/saaskit/internal/api"
	"github.com/saaskit-io/saaskit/internal/app"
	"github.com/saaskit-io/saaskit/internal/app/maintenance"
	iauth "github.com/saaskit-io/saaskit/internal/auth"
	"github.com/saaskit-io/saaskit/internal/cache"
	"github.com/saaskit-io/saaskit/internal/database"
	"github.com/saaskit-io/saaskit/internal/middleware"
	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/logger"
	"github.com/saaskit-io/saaskit/pkg/mail"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := app.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.WithModule("server")
	log.Info("starting", zap.String("version", version))

	db, err := database.Open(cfg.DatabaseConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		return err
	}

	jwtService, err := iauth.NewJWTService(cfg.JWTConfig())
	if err != nil {
		return err
	}

	mailer, err := mail.NewSMTPMailer(cfg.SMTPSettings())
	if err != nil {
		return err
	}

	// Prefer Redis when configured; fall back to the database-backed cache
	// so rate limiting still works on a single node.
	var cacheStore cache.Store
	var redisStore *cache.RedisStore
	dbCache := cache.NewDatabaseStore(db)
	if cfg.Redis.Enabled {
		redisStore, err = cache.NewRedisStore(cfg.RedisConfig())
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = redisStore.Close() }()
		cacheStore = redisStore
	} else {
		cacheStore = dbCache
	}

	userService, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	membershipService, err := services.NewMembershipService(db)
	if err != nil {
		return err
	}
	invitationService, err := services.NewInvitationService(db, mailer,
		services.WithInvitationBaseURL(cfg.Server.BaseURL),
		services.WithInvitationExpiry(cfg.Invitations.Expiry),
	)
	if err != nil {
		return err
	}
	tenantService, err := services.NewTenantService(db)
	if err != nil {
		return err
	}
	subscriptionService, err := services.NewSubscriptionService(db)
	if err != nil {
		return err
	}
	projectService, err := services.NewProjectService(db)
	if err != nil {
		return err
	}
	taskService, err := services.NewTaskService(db)
	if err != nil {
		return err
	}
	noteService, err := services.NewNoteService(db)
	if err != nil {
		return err
	}
	apiKeyService, err := services.NewAPIKeyService(db)
	if err != nil {
		return err
	}
	statsService, err := services.NewStatsService(db)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.RouterConfig{
		DB:             db,
		JWT:            jwtService,
		Version:        version,
		Users:          userService,
		Memberships:    membershipService,
		Invitations:    invitationService,
		Tenants:        tenantService,
		Subscriptions:  subscriptionService,
		Projects:       projectService,
		Tasks:          taskService,
		Notes:          noteService,
		APIKeys:        apiKeyService,
		Stats:          statsService,
		RateStore:      middleware.NewCacheRateStore(cacheStore),
		AuthRateLimit:  cfg.RateLimit.AuthRequests,
		AuthRateWindow: cfg.RateLimit.AuthWindow,
		EnableMetrics:  cfg.Metrics.Enabled,
		TrustedProxies: cfg.Server.TrustedProxies,
		ReleaseMode:    true,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	// Redis expires its own keys, so the purge job only needs the DB cache
	// when it is the active store.
	var purgeTarget *cache.DatabaseStore
	if !cfg.Redis.Enabled {
		purgeTarget = dbCache
	}
	cleaner, err := maintenance.NewCleaner(invitationService, purgeTarget, cfg.Maintenance.Schedule)
	if err != nil {
		return err
	}
	if err := cleaner.Start(); err != nil {
		return err
	}
	defer cleaner.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}
