package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"cloudstore/internal/database/migrations"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Connect opens PostgreSQL for postgres:// and keyword DSNs and SQLite (pure
// Go driver) for everything else.
func Connect(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	if IsPostgresDSN(dsn) {
		log.Info().Msg("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info().Str("dsn", dsn).Msg("using SQLite")

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        withForeignKeys(dsn),
		}),
		cfg,
	)
}

// IsPostgresDSN accepts URL DSNs and libpq keyword DSNs ("host=... user=...").
func IsPostgresDSN(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(dsn) {
		if strings.HasPrefix(field, "host=") {
			return true
		}
	}
	return false
}

// Migrate brings the schema up to date. PostgreSQL uses the embedded goose
// migrations (full-text index, FKs); SQLite falls back to AutoMigrate of the
// given models.
func Migrate(ctx context.Context, db *gorm.DB, models ...any) error {
	if db.Dialector.Name() == DialectPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect(DialectPostgres); err != nil {
			return fmt.Errorf("set goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
