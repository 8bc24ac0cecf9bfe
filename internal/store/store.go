// Package store runs generated aggregate queries against the videos database
// and owns its schema and bulk import.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"video-analytics/shared/config"
)

// Store is a bounded pool of connections to the analytics database.
type Store struct {
	db           *sql.DB
	dialect      Dialect
	queryTimeout time.Duration
	logger       *zap.Logger
}

// Open connects using cfg and verifies the connection. Callers waiting for a
// connection block while all MaxConns are in use.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, config.ErrStoreNotConfigured
	}

	dsn := cfg.URL
	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 5
	}
	minConns := cfg.MinConns
	if minConns <= 0 || minConns > maxConns {
		minConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("store connected",
		zap.String("driver", string(dialect)),
		zap.Int("max_conns", maxConns),
		zap.Int("min_conns", minConns))

	return &Store{
		db:           db,
		dialect:      dialect,
		queryTimeout: cfg.QueryTimeout,
		logger:       logger,
	}, nil
}

// sqliteDSN turns on foreign keys (for cascading deletes) and a busy timeout
// for every pooled connection.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks that a pooled connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
