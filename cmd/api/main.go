package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloudstore/internal/config"
	"cloudstore/internal/database"
	"cloudstore/internal/identity"
	jwtsvc "cloudstore/internal/pkg/jwt"
	"cloudstore/internal/pkg/logger"
	"cloudstore/internal/server"
)

// @title Cloudstore API
// @version 1.0
// @description File storage backend: uploads, folders, trash, search, sharing and signed links.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("", "info")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := database.Migrate(ctx, db, server.Models()...); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	provider := identity.NewLocalProvider(db, tokens, cfg.JWTAccessTTL, cfg.UpstreamTimeout)

	store, err := server.NewStore(ctx, cfg, tokens)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("blob store init failed")
	}

	publisher := server.NewPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("event publisher close failed")
		}
	}()

	app := server.New(cfg, db, provider, store, publisher, log)
	stopReconcile := app.Reconciler.Schedule(ctx, cfg.ReconcileInterval)
	defer close(stopReconcile)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Str("storage", cfg.StorageDriver).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
