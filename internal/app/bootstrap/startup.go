// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/content/users"
	"github.com/synkteam/municipath/internal/app/system/timeouts"
	"github.com/synkteam/municipath/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// MuniciPath builds the full engine stack here, makes sure the configured
// platform manager account exists, clears any expiry backlog that piled up
// while the service was down, and then starts the periodic sweep worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied from environment", zap.Int("count", n))
	}

	appStack = buildStack(deps.MongoDatabase, appCfg, logger)

	if appCfg.ManagerUsername != "" {
		if err := ensureManager(ctx, appStack.users, appCfg.ManagerUsername, logger); err != nil {
			return fmt.Errorf("ensure manager account: %w", err)
		}
	}

	appStack.sweep.Sweep()
	appStack.sweep.Start()
	return nil
}

// ensureManager creates or promotes the platform manager account. The
// account is created without credentials; authentication happens upstream,
// so an empty password hash simply means no local password is set.
func ensureManager(ctx context.Context, store users.UserStore, username string, logger *zap.Logger) error {
	u, err := store.Get(ctx, username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		now := time.Now().UTC()
		u = &models.User{
			Username:  username,
			Validated: true,
			Manager:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Save(ctx, u); err != nil {
			return err
		}
		logger.Info("created platform manager account", zap.String("username", username))
		return nil
	case err != nil:
		return err
	}

	if u.Manager {
		return nil
	}
	u.Manager = true
	u.Validated = true
	u.UpdatedAt = time.Now().UTC()
	if err := store.Save(ctx, u); err != nil {
		return err
	}
	logger.Info("promoted existing account to platform manager", zap.String("username", username))
	return nil
}
