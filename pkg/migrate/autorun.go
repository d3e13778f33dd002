package migrate

import (
	"context"
	"fmt"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when running in dev with
// EVERGREEN_AUTO_MIGRATE set. Other environments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := DialectFor(client.Driver())
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded", "dialect": dialect})
	logg.Info(ctx, "applying schema migrations")

	if err := RunFS(ctx, sqlDB, dialect, Embedded(), "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	logg.Info(ctx, "schema up to date")
	return nil
}
