// Package api assembles the HTTP surface: middleware stack, route groups,
// and the wiring between handlers and services.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/saaskit-io/saaskit/internal/auth"
	"github.com/saaskit-io/saaskit/internal/handlers"
	"github.com/saaskit-io/saaskit/internal/middleware"
	"github.com/saaskit-io/saaskit/internal/services"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	DB      *gorm.DB
	JWT     *iauth.JWTService
	Version string

	Users         *services.UserService
	Memberships   *services.MembershipService
	Invitations   *services.InvitationService
	Tenants       *services.TenantService
	Subscriptions *services.SubscriptionService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Notes         *services.NoteService
	APIKeys       *services.APIKeyService
	Stats         *services.StatsService

	// RateStore may be nil, which disables rate limiting.
	RateStore       middleware.RateStore
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	EnableMetrics   bool
	TrustedProxies  []string
	ReleaseMode     bool
	SkipAccessLogs  bool
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.Recovery())
	if !cfg.SkipAccessLogs {
		engine.Use(middleware.Logger())
	}
	if cfg.EnableMetrics {
		engine.Use(middleware.Metrics())
	}

	authHandler := handlers.NewAuthHandler(cfg.Users, cfg.Memberships, cfg.JWT)
	teamHandler := handlers.NewTeamHandler(cfg.Invitations, cfg.Memberships)
	tenantHandler := handlers.NewTenantHandler(cfg.Tenants, cfg.Memberships)
	billingHandler := handlers.NewBillingHandler(cfg.Subscriptions, cfg.Memberships)
	projectHandler := handlers.NewProjectHandler(cfg.Projects, cfg.Memberships)
	taskHandler := handlers.NewTaskHandler(cfg.Tasks, cfg.Memberships)
	noteHandler := handlers.NewNoteHandler(cfg.Notes, cfg.Memberships)
	apiKeyHandler := handlers.NewAPIKeyHandler(cfg.APIKeys, cfg.Memberships)
	dashboardHandler := handlers.NewDashboardHandler(cfg.Stats, cfg.Memberships)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)

	engine.GET("/health", healthHandler.Check)
	if cfg.EnableMetrics {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authLimit := cfg.AuthRateLimit
	authWindow := cfg.AuthRateWindow
	if authLimit <= 0 {
		authLimit = 10
	}
	if authWindow <= 0 {
		authWindow = time.Minute
	}

	apiGroup := engine.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Use(middleware.RateLimit(cfg.RateStore, authLimit, authWindow))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := apiGroup.Group("")
	protected.Use(middleware.Auth(cfg.JWT))
	{
		protected.GET("/auth/me", authHandler.Me)

		team := protected.Group("/team")
		{
			team.GET("/members", teamHandler.Members)
			team.GET("/invitations", teamHandler.Invitations)
			team.POST("/invite", teamHandler.Invite)
			team.POST("/accept-invitation", teamHandler.Accept)
			team.POST("/reject-invitation", teamHandler.Reject)
			team.POST("/cancel-invitation", teamHandler.Cancel)
			team.POST("/remove-member", teamHandler.RemoveMember)
		}

		protected.GET("/tenant", tenantHandler.Get)
		protected.POST("/tenant", tenantHandler.Create)
		protected.PATCH("/tenant", tenantHandler.Update)

		protected.GET("/billing/subscription", billingHandler.Get)
		protected.POST("/billing/upgrade", billingHandler.Upgrade)

		projects := protected.Group("/projects")
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.PATCH("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("", taskHandler.Create)
			tasks.GET("", taskHandler.List)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PATCH("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
		}

		notes := protected.Group("/notes")
		{
			notes.POST("", noteHandler.Create)
			notes.GET("", noteHandler.List)
			notes.GET("/:id", noteHandler.Get)
			notes.PATCH("/:id", noteHandler.Update)
			notes.DELETE("/:id", noteHandler.Delete)
		}

		keys := protected.Group("/api-keys")
		{
			keys.POST("", apiKeyHandler.Create)
			keys.GET("", apiKeyHandler.List)
			keys.DELETE("/:id", apiKeyHandler.Revoke)
		}

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
	}

	return engine, nil
}
