package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/wilayah_api/internal/app"
	"github.com/GTDGit/wilayah_api/internal/auth"
	"github.com/GTDGit/wilayah_api/internal/config"
	"github.com/GTDGit/wilayah_api/internal/database"
	"github.com/GTDGit/wilayah_api/internal/handler"
	"github.com/GTDGit/wilayah_api/internal/middleware"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// main is the application entrypoint for the Wilayah API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting wilayah api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Open cache. Reads and writes keep working without Redis, so a
	// missing Redis only degrades to the in-process store.
	cacheBackend, err := app.OpenCache(cfg, true)
	if err != nil {
		log.Error().Err(err).Msg("cache initialization failed")
		os.Exit(1)
	}
	defer cacheBackend.Close()

	// 4. Initialize services
	policy := auth.NewPolicy(auth.DefaultRoles)
	signer := utils.NewJWTSigner(cfg.JWTSecret, cfg.JWTTTL)
	svc := app.NewServices(db, cacheBackend.Store, policy.Authorizer(), signer)

	// 5. Initialize handlers
	handlers := &handler.Handlers{
		Health:    handler.NewHealthHandler(db, svc.Store),
		Auth:      handler.NewAuthHandler(svc.AdminAuth),
		Territory: handler.NewTerritoryHandler(svc.Provinces, svc.Regencies),
		Province:  handler.NewProvinceHandler(svc.Provinces, svc.Imports, svc.Demo, svc.Exports),
		Regency:   handler.NewRegencyHandler(svc.Regencies, svc.Exports),
		Cache:     handler.NewCacheHandler(svc.Validator, svc.Reads),
	}

	// 6. Initialize middleware
	limiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	defer limiter.Stop()
	jwtMw := middleware.NewJWTMiddleware(signer, limiter)

	// 7. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, jwtMw)

	// 8. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 9. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 10. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
