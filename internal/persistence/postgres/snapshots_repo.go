package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stakescope/stakescope/internal/persistence"
)

type snapshotRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotRepo creates a Postgres-backed TVS snapshot repository.
func NewSnapshotRepo(db *sqlx.DB, timeout time.Duration) persistence.SnapshotRepo {
	return &snapshotRepo{db: db, timeout: timeout}
}

func (r *snapshotRepo) ListTVS(ctx context.Context, address string, from, to time.Time) ([]persistence.TVSSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT snapshot_date, value_usd
		FROM tvs_snapshots
		WHERE operator_address = $1 AND snapshot_date >= $2 AND snapshot_date <= $3
		ORDER BY snapshot_date ASC`

	var rows []persistence.TVSSnapshot
	if err := r.db.SelectContext(ctx, &rows, query, address, from, to); err != nil {
		return nil, fmt.Errorf("list tvs snapshots for %s: %w", address, err)
	}
	return rows, nil
}
