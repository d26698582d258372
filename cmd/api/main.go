//	@title			StyleSync API
//	@version		1.0
//	@description	Backend for StyleSync, a personal wardrobe manager. Issues signed blob-upload URLs and stores wardrobe and outfit-planner metadata.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Firebase ID token. Format: **Bearer {token}**

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/stylesync/service/internal/auth"
	"github.com/stylesync/service/internal/blob"
	"github.com/stylesync/service/internal/config"
	"github.com/stylesync/service/internal/db"
	appMiddleware "github.com/stylesync/service/internal/middleware"
	"github.com/stylesync/service/internal/planner"
	"github.com/stylesync/service/internal/storage"
	"github.com/stylesync/service/internal/wardrobe"

	_ "github.com/stylesync/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	// The verifier fails closed: a missing or malformed service account is
	// reported here, and every authenticated request gets a 500 until the
	// operator fixes the configuration. It never falls back to a fake identity.
	verifier := auth.NewVerifier(cfg.FirebaseServiceAccountJSON)
	if !verifier.Available() {
		log.Error().Msg("firebase verifier not configured; all authenticated requests will fail")
	}

	// Wire dependencies: repository → service → handler
	blobHandler := blob.NewHandler(blob.NewService(store))

	wardrobeRepo := wardrobe.NewRepository(pool)
	wardrobeHandler := wardrobe.NewHandler(wardrobe.NewService(wardrobeRepo, store))

	plannerRepo := planner.NewRepository(pool)
	plannerHandler := planner.NewHandler(planner.NewService(plannerRepo))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(appMiddleware.CORS)
	r.Use(chiMiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API — everything under /api requires a Firebase bearer token.
	r.Route("/api", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(verifier))

		r.Post("/generateSas", blobHandler.GenerateSAS)
		r.Post("/deleteBlob", blobHandler.DeleteBlob)

		r.Route("/wardrobe", func(r chi.Router) {
			r.Post("/", wardrobeHandler.Create)
			r.Get("/", wardrobeHandler.List)
			r.Get("/{id}", wardrobeHandler.Get)
			r.Patch("/{id}", wardrobeHandler.Update)
			r.Delete("/{id}", wardrobeHandler.Delete)
		})

		r.Route("/planner", func(r chi.Router) {
			r.Get("/", plannerHandler.List)
			r.Put("/{date}", plannerHandler.Plan)
			r.Delete("/{id}", plannerHandler.Delete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Post("/", plannerHandler.AddFavorite)
			r.Get("/", plannerHandler.ListFavorites)
			r.Delete("/{id}", plannerHandler.DeleteFavorite)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

// newStorage builds the configured object storage backend. Azure is the
// default; STORAGE_BACKEND=s3 switches to the S3-compatible one.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Storage(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageUseSSL,
		)
	}
	return storage.NewAzureStorage(cfg.AzureConnectionString, cfg.AzureContainerName)
}
