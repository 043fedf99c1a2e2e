package database

import (
	"context"
	"fmt"
	"time"

	"taskdesk/taskdesk/config"
	applog "taskdesk/taskdesk/logger"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// gormWriter routes gorm's logger output through zerolog.
type gormWriter struct {
	log *zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Str("component", "gorm").Msgf(format, args...)
}

func dialector(cfg config.Config) gorm.Dialector {
	if cfg.DB.Driver == "sqlite" {
		return sqlite.Open(cfg.DB.SQLitePath)
	}
	return postgres.Open(cfg.DB.PostgresDSN())
}

func Setup(cfg config.Config) (*Database, error) {
	log := applog.Get()

	level := logger.Warn
	if cfg.AppEnv == "development" {
		level = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.New(gormWriter{log: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt:       true,
		AllowGlobalUpdate: false,
		// Lets services match unique violations with errors.Is(err, gorm.ErrDuplicatedKey).
		TranslateError: true,
	}

	db, err := gorm.Open(dialector(cfg), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	if cfg.DB.Driver == "sqlite" {
		// sqlite serializes writers; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info().Str("driver", cfg.DB.Driver).Msg("running database migrations")
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg("database migrations completed successfully")

	return &Database{DB: db}, nil
}

func (d *Database) Close() {
	log := applog.Get()
	if d.DB == nil {
		log.Warn().Msg("database connection is nil, nothing to close")
		return
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		log.Error().Err(err).Msg("failed to get database connection")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database connection")
	}
}

// Ping checks connectivity with a round trip query; backs the readiness check.
func (d *Database) Ping(ctx context.Context) error {
	if d.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	return d.DB.WithContext(ctx).Exec("SELECT 1").Error
}
