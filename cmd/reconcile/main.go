package main

import (
	"context"

	"cloudstore/internal/config"
	"cloudstore/internal/database"
	"cloudstore/internal/domain/files"
	jwtsvc "cloudstore/internal/pkg/jwt"
	"cloudstore/internal/pkg/logger"
	"cloudstore/internal/server"
)

// One-shot repair of blob intents left behind by interrupted uploads and
// purges. Meant for cron; the API process runs the same sweep on a ticker.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("", "info")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	store, err := server.NewStore(ctx, cfg, jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL))
	if err != nil {
		log.Fatal().Err(err).Msg("blob store init failed")
	}

	r := files.NewReconciler(
		files.NewRepository(db),
		files.NewIntentRepository(db),
		store,
		log,
		cfg.ReconcileGrace,
		cfg.UpstreamTimeout,
	)

	res, err := r.Sweep(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("reconcile failed")
	}
	log.Info().
		Int("scanned", res.Scanned).
		Int("repaired", res.Repaired).
		Int("failed", res.Failed).
		Msg("reconcile completed")
}
