package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/obadatech/tarkhees-backend/pkg/config"
	"github.com/obadatech/tarkhees-backend/pkg/db"
	"github.com/obadatech/tarkhees-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Run executes a goose command against the embedded migrations.
func Run(ctx context.Context, sqlDB *sql.DB, driver string, command string, args ...string) error {
	if sqlDB == nil {
		return fmt.Errorf("db is required")
	}

	dialect := "postgres"
	if strings.EqualFold(driver, "sqlite") {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.RunContext(ctx, command, sqlDB, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, cfg.DB.Driver, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
