package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	channeldomain "github.com/railzwaylabs/pricestack/internal/channel/domain"
	pricehistorydomain "github.com/railzwaylabs/pricestack/internal/pricehistory/domain"
	pricingruledomain "github.com/railzwaylabs/pricestack/internal/pricingrule/domain"
	strategydomain "github.com/railzwaylabs/pricestack/internal/strategy/domain"
	"github.com/railzwaylabs/pricestack/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models are migrated with AutoMigrate on drivers without embedded SQL.
var models = []any{
	&channeldomain.CommissionRule{},
	&pricingruledomain.PricingRule{},
	&strategydomain.Strategy{},
	&pricehistorydomain.PriceChange{},
	&BootstrapState{},
}

// RunMigrations brings the schema to the embedded version, seeds the system
// commission rules and activates the bootstrap state. Postgres runs the
// embedded SQL under an advisory lock. Other drivers use AutoMigrate.
func RunMigrations(ctx context.Context, conn *gorm.DB, driver string, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	latestVersion, err := LatestMigrationVersion()
	if err != nil {
		return err
	}
	checksum, err := MigrationsChecksum()
	if err != nil {
		return err
	}

	switch driver {
	case db.DriverPostgres, "":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		unlock, err := acquireAdvisoryLock(ctx, sqlDB)
		if err != nil {
			return err
		}
		defer func() {
			_ = unlock(context.Background())
		}()
		if err := migratePostgres(sqlDB, latestVersion); err != nil {
			return err
		}
	default:
		if err := conn.WithContext(ctx).AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	seeded, err := seedCommissionRules(ctx, conn)
	if err != nil {
		return err
	}

	version := strconv.FormatUint(uint64(latestVersion), 10)
	if err := activateBootstrapState(ctx, conn, version, checksum); err != nil {
		return err
	}

	log.Info("migrations applied",
		zap.String("driver", driver),
		zap.String("schema_version", version),
		zap.Int("seeded_commission_rules", seeded),
	)
	return nil
}

func migratePostgres(sqlDB *sql.DB, latestVersion uint) error {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	current, err := ensureNotDirty(migrator)
	if err != nil {
		return err
	}
	if current != latestVersion {
		return fmt.Errorf("schema version mismatch after migrate: got %d want %d", current, latestVersion)
	}
	return nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
