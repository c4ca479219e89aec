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

type commissionRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewCommissionRepo creates a Postgres-backed commission repository.
func NewCommissionRepo(db *sqlx.DB, timeout time.Duration) persistence.CommissionRepo {
	return &commissionRepo{db: db, timeout: timeout}
}

func (r *commissionRepo) ListRates(ctx context.Context, address string) ([]persistence.CommissionRate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT scope, scope_id, current_bips, activated_at, upcoming_bips
		FROM commission_rates
		WHERE operator_address = $1 AND activated_at <= now()
		ORDER BY activated_at DESC`

	var rows []persistence.CommissionRate
	if err := r.db.SelectContext(ctx, &rows, query, address); err != nil {
		return nil, fmt.Errorf("list commission rates for %s: %w", address, err)
	}
	return rows, nil
}

func (r *commissionRepo) Benchmarks(ctx context.Context) (*persistence.CommissionBenchmarks, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Single-row snapshot table maintained by the benchmark aggregation job.
	const query = `
		SELECT mean_bips, median_bips, p25_bips, p75_bips, p90_bips
		FROM commission_benchmarks
		ORDER BY computed_at DESC
		LIMIT 1`

	var b persistence.CommissionBenchmarks
	if err := r.db.GetContext(ctx, &b, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("get commission benchmarks: %w", err)
	}
	return &b, nil
}
