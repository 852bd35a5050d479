// Package server wires the HTTP surface: middleware, domain handlers and the
// background reconciler share one set of collaborators.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"cloudstore/internal/config"
	"cloudstore/internal/domain/auth"
	"cloudstore/internal/domain/files"
	"cloudstore/internal/domain/folders"
	"cloudstore/internal/domain/shares"
	"cloudstore/internal/events"
	"cloudstore/internal/identity"
	"cloudstore/internal/middleware"
	"cloudstore/internal/storage"
)

type App struct {
	Router     *gin.Engine
	Reconciler *files.Reconciler
}

// Models lists every table for SQLite AutoMigrate, parents first.
func Models() []any {
	return []any{
		&identity.User{},
		&folders.Folder{},
		&files.File{},
		&shares.Share{},
		&files.BlobIntent{},
	}
}

func New(
	cfg *config.Config,
	db *gorm.DB,
	provider identity.Provider,
	store storage.Store,
	publisher events.Publisher,
	log zerolog.Logger,
) *App {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	fileRepo := files.NewRepository(db)
	intentRepo := files.NewIntentRepository(db)

	folderService := folders.NewService(folders.NewRepository(db), publisher, log, cfg.UpstreamTimeout)
	fileService := files.NewService(fileRepo, intentRepo, store, folderService, publisher, log, files.Config{
		LinkTTL:         cfg.LinkTTL,
		UpstreamTimeout: cfg.UpstreamTimeout,
		MaxUploadSize:   cfg.MaxUploadSize,
	})
	shareService := shares.NewService(shares.NewRepository(db), fileRepo, publisher, log, cfg.UpstreamTimeout)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	middleware.SetupPrometheus(r)

	r.GET("/health", healthHandler(db, cfg.UpstreamTimeout))

	api := r.Group("/api")
	{
		auth.RegisterRoutes(api, auth.NewHandler(provider))

		if disk, ok := store.(*storage.DiskStore); ok {
			storage.RegisterRoutes(r, storage.NewDownloadHandler(disk))
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(provider))
		{
			files.RegisterRoutes(protected, files.NewHandler(fileService))
			folders.RegisterRoutes(protected, folders.NewHandler(folderService))
			shares.RegisterRoutes(protected, shares.NewHandler(shareService))
		}
	}

	return &App{
		Router:     r,
		Reconciler: files.NewReconciler(fileRepo, intentRepo, store, log, cfg.ReconcileGrace, cfg.UpstreamTimeout),
	}
}

func healthHandler(db *gorm.DB, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
