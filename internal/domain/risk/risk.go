// Package risk blends concentration, volatility and commission signals into
// a composite 0-100 operator risk score. Higher scores indicate more risk.
package risk

import (
	"math"

	"github.com/stakescope/stakescope/internal/domain/commission"
	"github.com/stakescope/stakescope/internal/domain/concentration"
	"github.com/stakescope/stakescope/internal/domain/volatility"
)

// Weights defines how much each signal contributes to the composite score.
type Weights struct {
	Concentration float64 `json:"concentration" yaml:"concentration"`
	Volatility    float64 `json:"volatility" yaml:"volatility"`
	Commission    float64 `json:"commission" yaml:"commission"`
}

// DefaultWeights emphasizes concentration as the primary structural risk.
var DefaultWeights = Weights{
	Concentration: 0.45,
	Volatility:    0.35,
	Commission:    0.20,
}

// Components is the per-signal breakdown, each on a 0-100 scale.
type Components struct {
	ConcentrationScore float64 `json:"concentration_score"`
	VolatilityScore    float64 `json:"volatility_score"`
	CommissionScore    float64 `json:"commission_score"`
}

// Score is the composite result.
type Score struct {
	Score      float64    `json:"score"`
	Components Components `json:"components"`
}

// Compute blends the three calculator outputs under the given weights.
// Zero-valued inputs (absent data) contribute zero risk for their component.
func Compute(conc concentration.Result, vol volatility.Result, comm commission.Impact, w Weights) Score {
	c := Components{
		ConcentrationScore: clamp(conc.HHI / 100),
		VolatilityScore:    clamp(vol.CoefficientOfVariation * 100),
		CommissionScore:    commissionScore(comm),
	}
	total := w.Concentration + w.Volatility + w.Commission
	if total <= 0 {
		w = DefaultWeights
		total = w.Concentration + w.Volatility + w.Commission
	}
	s := (c.ConcentrationScore*w.Concentration +
		c.VolatilityScore*w.Volatility +
		c.CommissionScore*w.Commission) / total
	return Score{Score: clamp(s), Components: c}
}

// commissionScore maps the coarse percentile bucket onto risk: the more of
// the network an operator out-charges, the higher the score.
func commissionScore(comm commission.Impact) float64 {
	if !comm.HasCommissionData {
		return 0
	}
	switch comm.PercentileBucket {
	case 5:
		return 90
	case 10:
		return 75
	case 25:
		return 50
	case 50:
		return 30
	default:
		return 10
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
