// Package factory builds the service's infrastructure adapters from config.
package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/echomap/echomap/internal/blob"
	"github.com/echomap/echomap/internal/config"
	"github.com/echomap/echomap/internal/mint"
	"github.com/echomap/echomap/internal/store"
	storepg "github.com/echomap/echomap/internal/store/postgres"
	storelite "github.com/echomap/echomap/internal/store/sqlite"
)

// NewStore opens the relational store for the configured driver. Migrations
// run inside Open. The returned *sql.DB is for the caller to close.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := storepg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("store ready")
		return storepg.NewWithDB(db), db, nil
	case "sqlite":
		db, err := storelite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store ready")
		return storelite.NewWithDB(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewBlobStore builds the S3-compatible object store client.
func NewBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	return blob.NewS3Store(ctx, blob.S3Options{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
}

// NewMinter returns the Algorand minter, or nil when minting is disabled or
// unconfigured. A nil minter degrades every mint to a mock transaction id.
func NewMinter(cfg *config.Config, log zerolog.Logger) mint.Minter {
	if cfg.MintDisabled || cfg.AlgodURL == "" || cfg.AlgodMnemonic == "" {
		log.Info().Bool("mint_disabled", cfg.MintDisabled).Msg("minting off, mock transaction ids only")
		return nil
	}
	m, err := mint.NewAlgorand(cfg.AlgodURL, cfg.AlgodToken, cfg.AlgodMnemonic, log)
	if err != nil {
		log.Warn().Err(err).Msg("algod client unavailable, mock transaction ids only")
		return nil
	}
	return m
}
