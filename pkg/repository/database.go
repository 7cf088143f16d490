package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/kutbudev/decktree/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the gorm handle and the dialect specific knobs.
type Database struct {
	DB     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewDatabase creates a new database connection. It does not migrate;
// call Migrate once at process start.
func NewDatabase(cfg config.DatabaseConfig, debug bool, log *logger.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}
	return Open(dialector, cfg.Driver, gormlogger.Default.LogMode(logLevel), log)
}

// Open wraps an arbitrary dialector. Tests use it with an in-memory sqlite.
func Open(dialector gorm.Dialector, driver string, gormLog gormlogger.Interface, log *logger.Logger) (*Database, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	if driver == config.DriverSQLite {
		// sqlite has a single writer; one connection also keeps
		// in-memory databases alive and shared.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Info("Database connection established", "driver", driver)
	return &Database{DB: gdb, driver: driver, log: log.With("component", "Database")}, nil
}

// Driver returns the configured driver name.
func (d *Database) Driver() string {
	return d.driver
}

// Migrate creates or updates the schema. Safe to run repeatedly.
func (d *Database) Migrate(ctx context.Context) error {
	d.log.Info("Auto migrating tables...")
	if err := d.DB.WithContext(ctx).AutoMigrate(
		&models.Node{},
		&models.Edge{},
	); err != nil {
		d.log.Error("Auto migration failed", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// snapshotOptions returns the options for read-only snapshot transactions.
// sqlite transactions are already serialized and its driver has no
// read-only mode, so it gets the defaults.
func (d *Database) snapshotOptions() []*sql.TxOptions {
	if d.driver == config.DriverPostgres {
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
	}
	return nil
}

// ReadSnapshot runs fn inside a read-only transaction so every read sees
// one consistent state of the store.
func (d *Database) ReadSnapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn, d.snapshotOptions()...)
}

// Write runs fn inside a read-write transaction.
func (d *Database) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// Reset deletes every edge and node in one transaction.
func (d *Database) Reset(ctx context.Context) error {
	err := d.Write(ctx, func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.Edge{}).Error; err != nil {
			return err
		}
		return all.Delete(&models.Node{}).Error
	})
	if err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	d.log.Info("Store reset")
	return nil
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the database
func (d *Database) Health(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
