package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/usermanagement/pkg/config"
	"github.com/angelmondragon/usermanagement/pkg/db"
	"github.com/angelmondragon/usermanagement/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when the app runs in dev mode with
// auto-migrate enabled. SQLite stores are always migrated since they are local files.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqlite := cfg.Store.Backend == config.StoreBackendSQLite
	if !sqlite && (!cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	dialect, err := Dialect(cfg.Store.Backend)
	if err != nil {
		return err
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": dialect})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, dialect, EmbeddedDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
