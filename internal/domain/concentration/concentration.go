// Package concentration computes market-share concentration metrics over a
// weighted entity distribution, such as an operator's USD exposure by AVS or
// the network's stake by operator.
package concentration

import (
	"math"
	"sort"

	"github.com/stakescope/stakescope/internal/domain/stats"
)

// WeightedEntity is one member of the distribution. Weight is typically a
// USD amount; entries with non-positive weight contribute nothing.
type WeightedEntity struct {
	EntityID string  `json:"entity_id"`
	Weight   float64 `json:"weight"`
}

// Result holds the concentration metrics for one distribution.
//
// HHI is the sum of squared percentage shares (0-10000).
// DiversificationScore uses a different normalization of the same shares
// (0-1 proportions) and must not be derived from HHI by consumers; the two
// ranges are part of the contract.
type Result struct {
	HHI                  float64 `json:"hhi"`
	Top1Pct              float64 `json:"top1_pct"`
	Top5Pct              float64 `json:"top5_pct"`
	Top10Pct             float64 `json:"top10_pct"`
	TotalEntities        int     `json:"total_entities"`
	EffectiveEntities    float64 `json:"effective_entities"`
	DiversificationScore float64 `json:"diversification_score"`
}

// Compute derives concentration metrics from the weighted distribution.
// An empty or zero-weight distribution yields a zero-valued Result; absence
// of data is a valid state, not a fault.
func Compute(entities []WeightedEntity) Result {
	var total float64
	weights := make([]float64, 0, len(entities))
	for _, e := range entities {
		if e.Weight <= 0 {
			continue
		}
		weights = append(weights, e.Weight)
		total += e.Weight
	}
	if total <= 0 {
		return Result{}
	}

	shares := make([]float64, len(weights))
	for i, w := range weights {
		shares[i] = w / total * 100
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))

	res := Result{
		HHI:           stats.HHI(shares),
		Top1Pct:       topN(shares, 1),
		Top5Pct:       topN(shares, 5),
		Top10Pct:      topN(shares, 10),
		TotalEntities: len(weights),
	}
	if res.HHI > 0 {
		res.EffectiveEntities = 10000 / res.HHI
	}

	// Diversification uses 0-1 proportions, a deliberately distinct
	// normalization from the percentage-based HHI above.
	var normalized float64
	for _, s := range shares {
		p := s / 100
		normalized += p * p
	}
	res.DiversificationScore = math.Round((1 - normalized) * 100)

	return res
}

func topN(sortedDesc []float64, n int) float64 {
	if n > len(sortedDesc) {
		n = len(sortedDesc)
	}
	var sum float64
	for _, s := range sortedDesc[:n] {
		sum += s
	}
	return sum
}
