// Package commission resolves effective commission rates across the three
// rate scopes and computes USD-weighted commission exposure against network
// benchmarks.
package commission

// Scope identifies where a commission rate applies. Precedence for resolving
// the effective rate on an allocation is strict: OPERATOR_SET > AVS > PI
// (most specific wins).
type Scope string

const (
	ScopePI          Scope = "PI"
	ScopeAVS         Scope = "AVS"
	ScopeOperatorSet Scope = "OPERATOR_SET"
)

// Rate is one commission-rate tier. ScopeID is empty for PI rates.
type Rate struct {
	Scope        Scope  `json:"scope"`
	ScopeID      string `json:"scope_id,omitempty"`
	CurrentBips  int    `json:"current_bips"`
	UpcomingBips *int   `json:"upcoming_bips,omitempty"`
}

// Allocation is one USD-weighted stake allocation.
type Allocation struct {
	OperatorSetID string  `json:"operator_set_id"`
	AVSID         string  `json:"avs_id"`
	StrategyID    string  `json:"strategy_id"`
	MagnitudeUSD  float64 `json:"magnitude_usd"`
}

// Benchmarks is the network-wide PI commission percentile snapshot, in bips.
type Benchmarks struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// VsMedian classification labels.
const (
	VsMedianLower   = "lower"
	VsMedianSimilar = "similar"
	VsMedianHigher  = "higher"
)

// SourceBreakdown is the USD magnitude resolved from each rate scope.
type SourceBreakdown struct {
	PIUSD          float64 `json:"pi_usd"`
	AVSUSD         float64 `json:"avs_usd"`
	OperatorSetUSD float64 `json:"operator_set_usd"`
}

// Impact is the blended commission exposure for one operator.
//
// PercentileBucket is a coarse bucket rank drawn from {75, 50, 25, 10, 5},
// roughly the share of the network charging at least this much. It is not a
// continuous percentile and callers must not treat it as exact.
type Impact struct {
	HasCommissionData   bool            `json:"has_commission_data"`
	WeightedAverageBips float64         `json:"weighted_average_bips"`
	PIRateBips          int             `json:"pi_rate_bips"`
	TotalUSD            float64         `json:"total_usd"`
	Breakdown           SourceBreakdown `json:"breakdown"`
	VsMedian            string          `json:"vs_median"`
	PercentileBucket    int             `json:"percentile_bucket"`
}

// Analyze computes the USD-weighted commission exposure for an operator's
// allocations given its rate tiers and the network benchmarks.
//
// Allocations with zero or negative magnitude are excluded from weighting.
// No rates at all yields an empty-state Impact, not an error.
func Analyze(allocations []Allocation, rates []Rate, bench Benchmarks) Impact {
	if len(rates) == 0 {
		return Impact{}
	}

	var piBips int
	avsBips := make(map[string]int)
	setBips := make(map[string]int)
	for _, r := range rates {
		switch r.Scope {
		case ScopePI:
			piBips = r.CurrentBips
		case ScopeAVS:
			avsBips[r.ScopeID] = r.CurrentBips
		case ScopeOperatorSet:
			setBips[r.ScopeID] = r.CurrentBips
		}
	}

	imp := Impact{HasCommissionData: true, PIRateBips: piBips}

	var weightedSum float64
	for _, a := range allocations {
		if a.MagnitudeUSD <= 0 {
			continue
		}
		var bips int
		if b, ok := setBips[a.OperatorSetID]; ok {
			bips = b
			imp.Breakdown.OperatorSetUSD += a.MagnitudeUSD
		} else if b, ok := avsBips[a.AVSID]; ok {
			bips = b
			imp.Breakdown.AVSUSD += a.MagnitudeUSD
		} else {
			bips = piBips
			imp.Breakdown.PIUSD += a.MagnitudeUSD
		}
		weightedSum += a.MagnitudeUSD * float64(bips)
		imp.TotalUSD += a.MagnitudeUSD
	}

	if imp.TotalUSD > 0 {
		imp.WeightedAverageBips = weightedSum / imp.TotalUSD
	} else {
		imp.WeightedAverageBips = float64(piBips)
	}

	imp.VsMedian = classifyVsMedian(imp.WeightedAverageBips, bench.Median)
	imp.PercentileBucket = percentileBucket(imp.WeightedAverageBips, bench)
	return imp
}

// classifyVsMedian compares bips against the network median with a ±10%
// tolerance band.
func classifyVsMedian(bips, median float64) string {
	band := median * 0.10
	switch {
	case bips < median-band:
		return VsMedianLower
	case bips > median+band:
		return VsMedianHigher
	default:
		return VsMedianSimilar
	}
}

func percentileBucket(bips float64, bench Benchmarks) int {
	switch {
	case bips >= bench.P90:
		return 5
	case bips >= bench.P75:
		return 10
	case bips >= bench.Median:
		return 25
	case bips >= bench.P25:
		return 50
	default:
		return 75
	}
}
