package application

import (
	"time"

	"github.com/stakescope/stakescope/internal/domain/commission"
	"github.com/stakescope/stakescope/internal/domain/concentration"
	"github.com/stakescope/stakescope/internal/domain/risk"
	"github.com/stakescope/stakescope/internal/domain/volatility"
	"github.com/stakescope/stakescope/internal/persistence"
)

// OperatorConcentration is the response-ready exposure concentration for one
// operator, weighted by USD exposure per AVS.
type OperatorConcentration struct {
	Operator string `json:"operator"`
	concentration.Result
	ComputedAt time.Time `json:"computed_at"`
}

// NetworkConcentration is the network-wide stake concentration across
// operators, weighted by TVS.
type NetworkConcentration struct {
	concentration.Result
	ComputedAt time.Time `json:"computed_at"`
}

// OperatorVolatility is the trailing-window TVS volatility for one operator.
type OperatorVolatility struct {
	Operator string    `json:"operator"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	volatility.Result
	ComputedAt time.Time `json:"computed_at"`
}

// OperatorCommission is the blended commission exposure for one operator.
type OperatorCommission struct {
	Operator string `json:"operator"`
	commission.Impact
	Benchmarks commission.Benchmarks `json:"benchmarks"`
	ComputedAt time.Time             `json:"computed_at"`
}

// OperatorPercentiles places one operator inside the peer population for
// each headline metric. Values are rank-of-value percentiles (0-100).
type OperatorPercentiles struct {
	Operator             string    `json:"operator"`
	TVSPercentile        float64   `json:"tvs_percentile"`
	DelegatorsPercentile float64   `json:"delegators_percentile"`
	AVSCountPercentile   float64   `json:"avs_count_percentile"`
	RiskPercentile       float64   `json:"risk_percentile"`
	PeerCount            int       `json:"peer_count"`
	ComputedAt           time.Time `json:"computed_at"`
}

// OperatorRisk is the composite risk score for one operator.
type OperatorRisk struct {
	Operator string `json:"operator"`
	risk.Score
	ComputedAt time.Time `json:"computed_at"`
}

// OperatorList is a paginated slice of the operator population.
type OperatorList struct {
	Operators  []persistence.OperatorMetrics `json:"operators"`
	Total      int                           `json:"total"`
	Limit      int                           `json:"limit"`
	Offset     int                           `json:"offset"`
	ComputedAt time.Time                     `json:"computed_at"`
}
