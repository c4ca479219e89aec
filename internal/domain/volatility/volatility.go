// Package volatility computes trailing-window volatility metrics from a
// time-ordered daily value series, such as an operator's TVS snapshots.
package volatility

import (
	"math"
	"sort"
	"time"

	"github.com/stakescope/stakescope/internal/domain/stats"
)

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// DefaultEpsilon is the relative slope magnitude below which the 30d trend
// is classified stable.
const DefaultEpsilon = 0.001

// Point is one daily observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Result holds the volatility metrics for one series. All values are >= 0.
// CoefficientOfVariation and Mean come from the longest window that has at
// least two observations.
type Result struct {
	StdDev7d               float64 `json:"stddev_7d"`
	StdDev30d              float64 `json:"stddev_30d"`
	StdDev90d              float64 `json:"stddev_90d"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Mean                   float64 `json:"mean"`
	TrendDirection         string  `json:"trend_direction"`
	TrendStrength          float64 `json:"trend_strength"`
}

// Calculator computes Results with a configurable stability epsilon.
type Calculator struct {
	epsilon float64
}

// New returns a Calculator. A non-positive epsilon falls back to
// DefaultEpsilon.
func New(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Calculator{epsilon: epsilon}
}

// Compute derives volatility metrics from the series. Windows take the
// trailing N daily values ending at the latest date; a window with fewer
// values uses what is available. Fewer than 2 points overall yields a
// zero-valued Result with a stable trend.
func (c *Calculator) Compute(series []Point) Result {
	if len(series) < 2 {
		return Result{TrendDirection: TrendStable}
	}

	pts := append([]Point(nil), series...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Value
	}

	res := Result{
		StdDev7d:  windowStdDev(values, 7),
		StdDev30d: windowStdDev(values, 30),
		StdDev90d: windowStdDev(values, 90),
	}

	longest := trailing(values, 90)
	res.Mean = stats.Mean(longest)
	if res.Mean != 0 {
		res.CoefficientOfVariation = stats.StdDev(longest) / res.Mean
	}
	// CoV is a dispersion measure; a negative mean would flip its sign.
	res.CoefficientOfVariation = math.Abs(res.CoefficientOfVariation)

	res.TrendDirection, res.TrendStrength = c.trend(trailing(values, 30))
	return res
}

// trend classifies the slope of the 30d window relative to its mean so that
// series of different magnitudes are comparable.
func (c *Calculator) trend(window []float64) (string, float64) {
	slope := stats.SlopeOf(window)
	mean := stats.Mean(window)
	if mean != 0 {
		slope /= mean
	}
	strength := math.Abs(slope)
	switch {
	case strength < c.epsilon:
		return TrendStable, strength
	case slope > 0:
		return TrendIncreasing, strength
	default:
		return TrendDecreasing, strength
	}
}

func windowStdDev(values []float64, n int) float64 {
	w := trailing(values, n)
	if len(w) < 2 {
		return 0
	}
	return stats.StdDev(w)
}

func trailing(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
