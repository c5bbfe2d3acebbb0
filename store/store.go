// Package store is the persistence layer: gorm over SQLite (development, tests) or
// Postgres. All workflow writes go through Transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/config"
	"school-cafe-api/logger"
	"school-cafe-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logger.GormLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// One connection: write transactions serialize and :memory: databases stay shared.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := New(db, log)
	if err := s.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	log.Info("Database connected and migrated",
		"driver", cfg.Driver,
		"max_open_conns", sqlDB.Stats().MaxOpenConnections)
	return s, nil
}

func New(db *gorm.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: logger.WithComponent(log, "store")}
}

// sqliteDSN turns on foreign keys and a busy timeout unless the DSN sets pragmas itself.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Dish{},
		&models.Order{},
		&models.PurchaseRequest{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Transaction runs fn inside a database transaction. fn receives a Store bound to the
// transaction; returning an error or panicking rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// DB exposes the session for read-only aggregation queries.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Closing database connection")
	return sqlDB.Close()
}

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite needs none: its single connection already serializes transactions.
func (s *Store) forUpdate(q *gorm.DB) *gorm.DB {
	if s.db.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// notFound maps gorm.ErrRecordNotFound to apperr.NotFound and anything else to Internal.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "%s not found", what)
	}
	return apperr.Wrap(err, apperr.Internal, "failed to load "+strings.ToLower(what))
}

func internal(err error, msg string) error {
	return apperr.Wrap(err, apperr.Internal, msg)
}
