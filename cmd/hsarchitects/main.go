// Package main is the entry point for the HS Architects content API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
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

	"hsarchitects/internal/auth"
	"hsarchitects/internal/backend"
	"hsarchitects/internal/config"
	"hsarchitects/internal/handlers"
	"hsarchitects/internal/imagehost"
	"hsarchitects/internal/router"
	"hsarchitects/internal/session"
	"hsarchitects/internal/storage"
	"hsarchitects/internal/store"
)

func main() {
	config.LoadDotEnv()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.DBDriver,
		"image_host", cfg.ImageHost,
	)

	ctx := context.Background()

	// Open the storage backend and apply pending migrations.
	db, err := backend.Open(ctx, cfg, backend.Options{Migrate: true})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	passwords, err := auth.NewPasswords(cfg.PasswordHasher)
	if err != nil {
		slog.Error("failed to initialize password hashing", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if users already exist).
	if cfg.IsDev() {
		hash, err := passwords.Hash(store.SeedPassword)
		if err != nil {
			slog.Error("failed to hash seed password", "error", err)
			os.Exit(1)
		}
		if err := store.Seed(ctx, db.Repos, hash); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()

	// Sessions live in Valkey; the memory driver keeps them in process.
	var sessions session.Manager
	if cfg.DBDriver == config.DriverMemory {
		sessions = session.NewMemoryStore()
	} else {
		valkeyClient, err := session.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		sessions = session.NewStore(valkeyClient, secureCookies)
	}

	host, err := openImageHost(cfg)
	if err != nil {
		slog.Error("failed to initialize image host", "error", err)
		os.Exit(1)
	}

	authenticator := auth.NewAuthenticator(db.Repos.Users, passwords, cfg.AdminUsername, cfg.AdminPassword)
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, environment super-admin disabled")
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:       sessions,
		Content:        handlers.NewContent(db.Repos),
		Users:          handlers.NewUsers(db.Repos.Users, passwords, sessions),
		Auth:           handlers.NewAuth(authenticator, sessions, db.Repos.Users, cfg.TOTPIssuer),
		Media:          handlers.NewMedia(host),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Secure:         secureCookies,
	})

	// WriteTimeout covers one image upload round trip to the host.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openImageHost builds the configured image host. It returns a nil host
// when credentials are missing so the API still starts without uploads.
func openImageHost(cfg *config.Config) (imagehost.Host, error) {
	switch cfg.ImageHost {
	case config.ImageHostS3:
		client, err := storage.New(storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		if client == nil {
			slog.Warn("s3 storage not configured, image uploads disabled")
			return nil, nil
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return imagehost.NewS3(client), nil

	default:
		if !cfg.CloudinaryConfigured() {
			slog.Warn("cloudinary not configured, image uploads disabled")
			return nil, nil
		}
		c, err := imagehost.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		slog.Info("cloudinary configured", "cloud", cfg.CloudinaryCloudName)
		return c, nil
	}
}
