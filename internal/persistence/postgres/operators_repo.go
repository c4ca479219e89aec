// Package postgres implements the persistence interfaces against the
// analytics Postgres store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stakescope/stakescope/internal/persistence"
)

type operatorRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOperatorRepo creates a Postgres-backed operator repository.
func NewOperatorRepo(db *sqlx.DB, timeout time.Duration) persistence.OperatorRepo {
	return &operatorRepo{db: db, timeout: timeout}
}

func (r *operatorRepo) Get(ctx context.Context, address string) (*persistence.OperatorMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT address, tvs_usd, delegator_count, avs_count, risk_score, updated_at
		FROM operator_metrics
		WHERE address = $1`

	var m persistence.OperatorMetrics
	if err := r.db.GetContext(ctx, &m, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("get operator %s: %w", address, err)
	}
	return &m, nil
}

func (r *operatorRepo) ListMetrics(ctx context.Context) ([]persistence.OperatorMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT address, tvs_usd, delegator_count, avs_count, risk_score, updated_at
		FROM operator_metrics
		ORDER BY tvs_usd DESC`

	var rows []persistence.OperatorMetrics
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list operator metrics: %w", err)
	}
	return rows, nil
}
