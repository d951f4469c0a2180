package migration

import (
	"context"

	"github.com/railzwaylabs/pricestack/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		return RunMigrations(context.Background(), conn, cfg.Database.Driver, log.Named("migration"))
	}),
)
