// Package persistence defines the typed records and repository interfaces
// for the analytics store. Implementations live in the postgres subpackage;
// the analytics core consumes only these interfaces.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stakescope/stakescope/internal/domain/commission"
	"github.com/stakescope/stakescope/internal/domain/volatility"
)

// ErrNotFound signals that a requested entity is absent from the store.
// It is surfaced to callers as a domain-level not-found and never retried.
var ErrNotFound = errors.New("not found")

// OperatorMetrics is one row of the per-operator aggregate table kept fresh
// by the external ingestion pipeline.
type OperatorMetrics struct {
	Address        string          `db:"address" json:"address"`
	TVSUSD         decimal.Decimal `db:"tvs_usd" json:"tvs_usd"`
	DelegatorCount int             `db:"delegator_count" json:"delegator_count"`
	AVSCount       int             `db:"avs_count" json:"avs_count"`
	RiskScore      float64         `db:"risk_score" json:"risk_score"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Allocation is one operator-set allocation row. MagnitudeUSD is scanned as
// a decimal to keep the numeric column exact until the calculator boundary.
type Allocation struct {
	OperatorSetID string          `db:"operator_set_id"`
	AVSID         string          `db:"avs_id"`
	StrategyID    string          `db:"strategy_id"`
	MagnitudeUSD  decimal.Decimal `db:"magnitude_usd"`
}

// CommissionRate is one commission-rate row across the PI/AVS/OPERATOR_SET
// scopes. ScopeID is NULL for PI rates.
type CommissionRate struct {
	Scope        string         `db:"scope"`
	ScopeID      sql.NullString `db:"scope_id"`
	CurrentBips  int            `db:"current_bips"`
	ActivatedAt  time.Time      `db:"activated_at"`
	UpcomingBips sql.NullInt64  `db:"upcoming_bips"`
}

// CommissionBenchmarks is the network-wide PI commission percentile snapshot,
// refreshed by an external aggregation job.
type CommissionBenchmarks struct {
	Mean   float64 `db:"mean_bips"`
	Median float64 `db:"median_bips"`
	P25    float64 `db:"p25_bips"`
	P75    float64 `db:"p75_bips"`
	P90    float64 `db:"p90_bips"`
}

// TVSSnapshot is one daily TVS observation for an operator.
type TVSSnapshot struct {
	Date     time.Time       `db:"snapshot_date"`
	ValueUSD decimal.Decimal `db:"value_usd"`
}

// OperatorRepo reads per-operator aggregates.
type OperatorRepo interface {
	// Get returns the aggregate row for one operator, ErrNotFound when the
	// operator is unknown.
	Get(ctx context.Context, address string) (*OperatorMetrics, error)
	// ListMetrics returns the aggregate rows for the whole population.
	ListMetrics(ctx context.Context) ([]OperatorMetrics, error)
}

// AllocationRepo reads operator allocations.
type AllocationRepo interface {
	ListByOperator(ctx context.Context, address string) ([]Allocation, error)
}

// CommissionRepo reads commission rates and network benchmarks.
type CommissionRepo interface {
	ListRates(ctx context.Context, address string) ([]CommissionRate, error)
	Benchmarks(ctx context.Context) (*CommissionBenchmarks, error)
}

// SnapshotRepo reads time-series TVS snapshots.
type SnapshotRepo interface {
	ListTVS(ctx context.Context, address string, from, to time.Time) ([]TVSSnapshot, error)
}

// Domain converts an allocation row into the calculator's input record.
func (a Allocation) Domain() commission.Allocation {
	return commission.Allocation{
		OperatorSetID: a.OperatorSetID,
		AVSID:         a.AVSID,
		StrategyID:    a.StrategyID,
		MagnitudeUSD:  a.MagnitudeUSD.InexactFloat64(),
	}
}

// Domain converts a commission-rate row into the calculator's rate record.
func (r CommissionRate) Domain() commission.Rate {
	rate := commission.Rate{
		Scope:       commission.Scope(r.Scope),
		CurrentBips: r.CurrentBips,
	}
	if r.ScopeID.Valid {
		rate.ScopeID = r.ScopeID.String
	}
	if r.UpcomingBips.Valid {
		upcoming := int(r.UpcomingBips.Int64)
		rate.UpcomingBips = &upcoming
	}
	return rate
}

// Domain converts the benchmark row into the calculator's benchmark record.
func (b CommissionBenchmarks) Domain() commission.Benchmarks {
	return commission.Benchmarks{
		Mean:   b.Mean,
		Median: b.Median,
		P25:    b.P25,
		P75:    b.P75,
		P90:    b.P90,
	}
}

// Domain converts a snapshot row into a volatility series point.
func (s TVSSnapshot) Domain() volatility.Point {
	return volatility.Point{Date: s.Date, Value: s.ValueUSD.InexactFloat64()}
}
