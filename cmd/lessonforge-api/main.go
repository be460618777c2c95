package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/cache"
	"github.com/dimitrije/lessonforge-api/internal/config"
	"github.com/dimitrije/lessonforge-api/internal/database"
	"github.com/dimitrije/lessonforge-api/internal/handlers"
	"github.com/dimitrije/lessonforge-api/internal/logger"
	authmw "github.com/dimitrije/lessonforge-api/internal/middleware"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var shareTokens services.ShareTokenCache = cache.NopShareTokens{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		shareTokens = cache.NewShareTokens(client, cfg.ShareCacheTTL)
	} else {
		log.Warn().Msg("REDIS_URL not set, share token cache disabled")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	contentService := services.NewContentService(db)
	collaborationService := services.NewCollaborationService(db, contentService, log.With().Str("component", "collaborations").Logger())
	shareService := services.NewShareService(db, contentService, shareTokens, log.With().Str("component", "shares").Logger())
	emailService := services.NewEmailService(cfg.SMTP)

	if !emailService.IsConfigured() {
		log.Warn().Msg("SMTP not configured, invitation emails disabled")
	}

	hub := sse.NewHub()
	go hub.Run()

	handlerLog := log.With().Str("component", "http").Logger()
	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService, handlerLog)
	collaborationHandler := handlers.NewCollaborationHandler(collaborationService, userService, contentService, hub, emailService, cfg.BaseURL, handlerLog)
	shareHandler := handlers.NewShareHandler(shareService, userService, contentService, emailService, cfg.BaseURL, handlerLog)
	sseHandler := handlers.NewSSEHandler(hub, collaborationService, handlerLog)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.SharePasswordHeader},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger(handlerLog))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	public := api.Group("")
	public.Use(authmw.OptionalAuth(jwtService))

	public.Get("/s/:token", shareHandler.View)
	public.Get("/s/:token/download", shareHandler.Download)
	public.Post("/s/:token/comments", shareHandler.AddComment)
	public.Post("/s/:token/comments/:commentRef/replies", shareHandler.AddReply)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/collaborations", collaborationHandler.List)
	protected.Post("/collaborations", collaborationHandler.Create)
	protected.Get("/collaborations/:id", collaborationHandler.Get)
	protected.Delete("/collaborations/:id", collaborationHandler.Delete)
	protected.Patch("/collaborations/:id/settings", collaborationHandler.UpdateSettings)
	protected.Patch("/collaborations/:id/status", collaborationHandler.SetStatus)

	protected.Post("/collaborations/:id/members", collaborationHandler.AddMember)
	protected.Delete("/collaborations/:id/members/:userId", collaborationHandler.RemoveMember)
	protected.Get("/invitations", collaborationHandler.ListInvitations)
	protected.Post("/collaborations/:id/invitation/accept", collaborationHandler.AcceptInvitation)
	protected.Post("/collaborations/:id/invitation/decline", collaborationHandler.DeclineInvitation)

	protected.Post("/collaborations/:id/comments", collaborationHandler.AddComment)
	protected.Post("/collaborations/:id/comments/:commentRef/replies", collaborationHandler.AddReply)
	protected.Post("/collaborations/:id/comments/:commentRef/resolve", collaborationHandler.ResolveComment)

	protected.Post("/collaborations/:id/tasks", collaborationHandler.AddTask)
	protected.Patch("/collaborations/:id/tasks/:taskRef", collaborationHandler.UpdateTask)

	protected.Get("/collaborations/:id/versions", collaborationHandler.ListVersions)
	protected.Post("/collaborations/:id/versions", collaborationHandler.CreateVersion)
	protected.Get("/collaborations/:id/versions/:number", collaborationHandler.GetVersion)
	protected.Get("/collaborations/:id/timeline", collaborationHandler.Timeline)

	protected.Get("/content/:contentType/:contentId/collaboration", collaborationHandler.GetByContent)
	protected.Get("/content/:contentType/:contentId/shares", shareHandler.ListByContent)

	protected.Get("/shares", shareHandler.ListMine)
	protected.Post("/shares", shareHandler.Create)
	protected.Get("/shares/:id", shareHandler.Get)
	protected.Patch("/shares/:id", shareHandler.Update)
	protected.Delete("/shares/:id", shareHandler.Delete)
	protected.Get("/shares/:id/content", shareHandler.View)
	protected.Get("/shares/:id/download", shareHandler.Download)
	protected.Post("/shares/:id/comments", shareHandler.AddComment)
	protected.Post("/shares/:id/comments/:commentRef/replies", shareHandler.AddReply)

	protected.Get("/events", sseHandler.Connect)
	protected.Get("/collaborations/:id/events", sseHandler.ConnectCollaboration)
	protected.Post("/events/:clientId/collaborations/:id", sseHandler.Subscribe)
	protected.Delete("/events/:clientId/collaborations/:id", sseHandler.Unsubscribe)

	api.Get("/health", func(c *drift.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			_ = c.JSON(503, map[string]string{"status": "degraded"})
			return
		}
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go runMaintenance(ctx, log, tokenService)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := app.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
}

// runMaintenance prunes expired refresh tokens every hour until ctx is done.
// Share expiry is evaluated on access; `collabctl shares expire` is the only
// thing that flips is_active for expired shares.
func runMaintenance(ctx context.Context, log zerolog.Logger, tokens *services.TokenService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := tokens.CleanupExpired(ctx); err != nil {
				log.Error().Err(err).Msg("refresh token cleanup failed")
			} else if n > 0 {
				log.Info().Int64("removed", n).Msg("expired refresh tokens removed")
			}
		}
	}
}
