package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/stakescope/stakescope/internal/domain/commission"
)

func TestAllocation_Domain(t *testing.T) {
	row := Allocation{
		OperatorSetID: "set-1",
		AVSID:         "avs-1",
		StrategyID:    "strat-1",
		MagnitudeUSD:  decimal.RequireFromString("12345.678901"),
	}
	got := row.Domain()
	assert.Equal(t, "set-1", got.OperatorSetID)
	assert.Equal(t, "avs-1", got.AVSID)
	assert.Equal(t, "strat-1", got.StrategyID)
	assert.InDelta(t, 12345.678901, got.MagnitudeUSD, 1e-6)
}

func TestCommissionRate_Domain(t *testing.T) {
	t.Run("pi_rate_has_no_scope_id", func(t *testing.T) {
		row := CommissionRate{Scope: "PI", CurrentBips: 1000}
		got := row.Domain()
		assert.Equal(t, commission.ScopePI, got.Scope)
		assert.Empty(t, got.ScopeID)
		assert.Nil(t, got.UpcomingBips)
	})

	t.Run("scoped_rate_with_upcoming_change", func(t *testing.T) {
		row := CommissionRate{
			Scope:        "OPERATOR_SET",
			ScopeID:      sql.NullString{String: "set-7", Valid: true},
			CurrentBips:  250,
			UpcomingBips: sql.NullInt64{Int64: 300, Valid: true},
		}
		got := row.Domain()
		assert.Equal(t, commission.ScopeOperatorSet, got.Scope)
		assert.Equal(t, "set-7", got.ScopeID)
		if assert.NotNil(t, got.UpcomingBips) {
			assert.Equal(t, 300, *got.UpcomingBips)
		}
	})
}

func TestCommissionBenchmarks_Domain(t *testing.T) {
	row := CommissionBenchmarks{Mean: 400, Median: 350, P25: 200, P75: 600, P90: 900}
	got := row.Domain()
	assert.Equal(t, 350.0, got.Median)
	assert.Equal(t, 900.0, got.P90)
}

func TestTVSSnapshot_Domain(t *testing.T) {
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	row := TVSSnapshot{Date: date, ValueUSD: decimal.NewFromInt(5000)}
	got := row.Domain()
	assert.Equal(t, date, got.Date)
	assert.Equal(t, 5000.0, got.Value)
}
