package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stakescope/stakescope/internal/persistence"
)

type allocationRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewAllocationRepo creates a Postgres-backed allocation repository.
func NewAllocationRepo(db *sqlx.DB, timeout time.Duration) persistence.AllocationRepo {
	return &allocationRepo{db: db, timeout: timeout}
}

func (r *allocationRepo) ListByOperator(ctx context.Context, address string) ([]persistence.Allocation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT operator_set_id, avs_id, strategy_id, magnitude_usd
		FROM allocations
		WHERE operator_address = $1
		ORDER BY magnitude_usd DESC`

	var rows []persistence.Allocation
	if err := r.db.SelectContext(ctx, &rows, query, address); err != nil {
		return nil, fmt.Errorf("list allocations for %s: %w", address, err)
	}
	return rows, nil
}
