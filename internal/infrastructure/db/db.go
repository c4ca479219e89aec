// Package db manages connections to the two logical Postgres stores: the
// analytics store read by the orchestrator and the user/auth store consumed
// by the out-of-scope session layer.
package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/stakescope/stakescope/internal/config"
)

// Stores bundles the two logical databases. Users is nil when no users DSN
// is configured.
type Stores struct {
	Analytics *sqlx.DB
	Users     *sqlx.DB
}

// Connect opens and verifies the configured stores.
func Connect(cfg config.DatabaseConfig) (*Stores, error) {
	analytics, err := open(cfg, cfg.AnalyticsDSN)
	if err != nil {
		return nil, fmt.Errorf("analytics store: %w", err)
	}

	stores := &Stores{Analytics: analytics}
	if cfg.UsersDSN != "" {
		users, err := open(cfg, cfg.UsersDSN)
		if err != nil {
			analytics.Close()
			return nil, fmt.Errorf("users store: %w", err)
		}
		stores.Users = users
	}
	return stores, nil
}

func open(cfg config.DatabaseConfig, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return conn, nil
}

// Close closes every open store.
func (s *Stores) Close() error {
	var first error
	if s.Analytics != nil {
		if err := s.Analytics.Close(); err != nil {
			first = err
		}
	}
	if s.Users != nil {
		if err := s.Users.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
