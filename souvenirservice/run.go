// Package souvenirservice assembles and runs the souvenir HTTP service.
package souvenirservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/echomap/echomap/internal/api"
	"github.com/echomap/echomap/internal/auth"
	"github.com/echomap/echomap/internal/blob"
	"github.com/echomap/echomap/internal/config"
	"github.com/echomap/echomap/internal/factory"
	"github.com/echomap/echomap/internal/health"
	"github.com/echomap/echomap/internal/imagegen"
	"github.com/echomap/echomap/internal/platform/logger"
	"github.com/echomap/echomap/internal/services"
	"github.com/echomap/echomap/internal/store"
	"github.com/echomap/echomap/internal/transcribe"
)

const healthInterval = 30 * time.Second

// Run starts the souvenir service and blocks until shutdown or error.
func Run() error {
	log := logger.New("souvenir-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Souvenir service starting")

	// Root context bound to SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, db, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Store unavailable")
		return err
	}
	defer func() { _ = db.Close() }()

	blobs, err := factory.NewBlobStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Object store unavailable")
		return err
	}

	// Store health is probed in the background; the health endpoint reports
	// the aggregated cached result.
	storeChecker := store.NewHealthChecker(st.(store.Pinger), log, 5*time.Second)
	go storeChecker.Start(ctx, healthInterval)
	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, healthInterval)

	router := buildRouter(cfg, st, blobs, svcHealth.IsHealthy, log)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires adapters, services and handlers.
func buildRouter(cfg *config.Config, st store.Store, blobs blob.Store, healthy func() bool, log zerolog.Logger) http.Handler {
	jwt := auth.NewJWTAuthorizer(cfg.JWTSecret)

	deps := api.Deps{
		Authorizer:  jwt,
		Tokens:      jwt,
		Souvenirs:   services.NewSouvenirService(st, blobs, factory.NewMinter(cfg, log), cfg.S3ImageBucket, log),
		Profiles:    services.NewProfileService(st),
		Transcriber: transcribe.New(cfg.TranscribeURL, cfg.TranscribeKey, log),
		Images:      imagegen.New(cfg.ImageGenURL, cfg.ImageGenKey, log),
		Blobs:       blobs,
		AudioBucket: cfg.S3AudioBucket,
		ImageBucket: cfg.S3ImageBucket,
		Healthy:     healthy,
	}
	return api.NewRouter(deps)
}
