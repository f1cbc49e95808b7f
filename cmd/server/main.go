package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yukikurage/dana-ai-api/internal/cache"
	"github.com/yukikurage/dana-ai-api/internal/config"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	"github.com/yukikurage/dana-ai-api/internal/database"
	"github.com/yukikurage/dana-ai-api/internal/handlers"
	"github.com/yukikurage/dana-ai-api/internal/logger"
	"github.com/yukikurage/dana-ai-api/internal/metrics"
	"github.com/yukikurage/dana-ai-api/internal/middleware"
	"github.com/yukikurage/dana-ai-api/internal/repository"
	"github.com/yukikurage/dana-ai-api/internal/services"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", true)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	zerolog.DefaultContextLogger = &log

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	listCache := newCache(cfg, log)

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	orgService := services.NewOrganizationService(orgRepo, userRepo, cfg.InviteTTL)
	resolver := services.NewContextResolver(orgService, cfg.DefaultOrganizationPolicy, m)
	workspace := services.NewWorkspaceService(services.WorkspaceRepositories{
		Platforms:     repository.NewPlatformRepository(db),
		Conversations: repository.NewConversationRepository(db),
		Messages:      repository.NewMessageRepository(db),
		Knowledge:     repository.NewKnowledgeBaseRepository(db),
	}, listCache, m)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	// Setup session middleware with Redis
	// Pool size 10, default redis user
	store, err := redisStore.NewStore(10, "tcp", cfg.RedisAddr(), "", cfg.RedisPassword, []byte(cfg.SessionSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis session store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	registerRoutes(r, routeDeps{
		jwtSecret: cfg.JWTSecret,
		auth:      handlers.NewAuthHandler(authService),
		orgs:      handlers.NewOrganizationHandler(orgService),
		workspace: handlers.NewWorkspaceHandler(workspace),
		resolver:  resolver,
		metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newCache(cfg *config.Config, log zerolog.Logger) cache.Cache {
	switch cfg.CacheDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
		})
		log.Info().Str("addr", cfg.RedisAddr()).Msg("using redis list cache")
		return cache.NewRedisCache(client, cfg.CacheTTL)
	case "none":
		return cache.Noop{}
	default:
		return cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
	}
}

type routeDeps struct {
	jwtSecret string
	auth      *handlers.AuthHandler
	orgs      *handlers.OrganizationHandler
	workspace *handlers.WorkspaceHandler
	resolver  middleware.OrganizationContextResolver
	metrics   http.Handler
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	requireAuth := middleware.RequireAuth(d.jwtSecret)
	requireOrg := middleware.RequireOrganizationContext(d.resolver)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Dana AI API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(d.metrics))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", d.auth.Signup)
			auth.POST("/login", d.auth.Login)
			auth.POST("/logout", d.auth.Logout)
			auth.GET("/me", requireAuth, d.auth.GetCurrentUser)
		}

		// Organization directory (authenticated, no organization context)
		orgs := api.Group("/organizations")
		orgs.Use(requireAuth)
		{
			orgs.POST("", d.orgs.CreateOrganization)
			orgs.GET("", d.orgs.ListOrganizations)
			orgs.POST("/accept", d.orgs.AcceptInvite)
		}
		api.PUT("/session/organization", requireAuth, d.orgs.SelectOrganization)

		// Routes below run inside a resolved organization context
		scoped := api.Group("")
		scoped.Use(requireAuth, requireOrg)
		{
			scoped.GET("/organization", d.orgs.GetOrganization)
			scoped.PUT("/organization", middleware.RequireRole(tenancy.RoleAdmin), d.orgs.UpdateOrganization)
			scoped.POST("/organization/members", middleware.RequireRole(tenancy.RoleAdmin), d.orgs.InviteMember)
			scoped.DELETE("/organization/members/:user_id", middleware.RequireRole(tenancy.RoleAdmin), d.orgs.RevokeMember)

			scoped.GET("/platforms", d.workspace.ListPlatforms)
			scoped.POST("/platforms", d.workspace.CreatePlatform)
			scoped.DELETE("/platforms/:id", d.workspace.DeletePlatform)

			scoped.GET("/conversations", d.workspace.ListConversations)
			scoped.POST("/conversations", d.workspace.CreateConversation)
			scoped.GET("/conversations/:id", d.workspace.GetConversation)
			scoped.PATCH("/conversations/:id", d.workspace.UpdateConversationStatus)
			scoped.GET("/conversations/:id/messages", d.workspace.ListMessages)
			scoped.POST("/conversations/:id/messages", d.workspace.CreateMessage)

			scoped.GET("/knowledge-base", d.workspace.ListKnowledgeBase)
			scoped.POST("/knowledge-base", d.workspace.CreateKnowledgeBaseItem)
			scoped.GET("/knowledge-base/:id", d.workspace.GetKnowledgeBaseItem)
			scoped.DELETE("/knowledge-base/:id", d.workspace.DeleteKnowledgeBaseItem)
		}
	}
}
