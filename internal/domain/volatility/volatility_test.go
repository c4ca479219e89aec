package volatility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stakescope/stakescope/internal/domain/stats"
)

func dailySeries(start time.Time, values ...float64) []Point {
	pts := make([]Point, len(values))
	for i, v := range values {
		pts[i] = Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return pts
}

func TestCalculator_Compute(t *testing.T) {
	calc := New(0)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("constant_series_has_zero_volatility", func(t *testing.T) {
		res := calc.Compute(dailySeries(start, 5, 5, 5, 5, 5, 5, 5, 5))
		assert.Equal(t, 0.0, res.StdDev7d)
		assert.Equal(t, 0.0, res.StdDev30d)
		assert.Equal(t, 0.0, res.StdDev90d)
		assert.Equal(t, 0.0, res.CoefficientOfVariation)
		assert.InDelta(t, 5.0, res.Mean, 1e-9)
		assert.Equal(t, TrendStable, res.TrendDirection)
	})

	t.Run("short_series_uses_available_values", func(t *testing.T) {
		values := []float64{10, 12, 11, 13, 12, 14, 15, 13, 16, 14}
		res := calc.Compute(dailySeries(start, values...))

		// 7d window takes the trailing 7 values; 30d and 90d fall back to
		// all 10 available.
		assert.InDelta(t, stats.StdDev(values[3:]), res.StdDev7d, 1e-9)
		assert.InDelta(t, stats.StdDev(values), res.StdDev30d, 1e-9)
		assert.InDelta(t, stats.StdDev(values), res.StdDev90d, 1e-9)
		assert.InDelta(t, stats.Mean(values), res.Mean, 1e-9)
		assert.InDelta(t, stats.StdDev(values)/stats.Mean(values), res.CoefficientOfVariation, 1e-9)
	})

	t.Run("long_series_windows_are_trailing", func(t *testing.T) {
		values := make([]float64, 120)
		for i := range values {
			values[i] = float64(i)
		}
		res := calc.Compute(dailySeries(start, values...))
		assert.InDelta(t, stats.StdDev(values[113:]), res.StdDev7d, 1e-9)
		assert.InDelta(t, stats.StdDev(values[90:]), res.StdDev30d, 1e-9)
		assert.InDelta(t, stats.StdDev(values[30:]), res.StdDev90d, 1e-9)
		assert.InDelta(t, stats.Mean(values[30:]), res.Mean, 1e-9)
	})

	t.Run("unordered_input_is_sorted_by_date", func(t *testing.T) {
		pts := []Point{
			{Date: start.AddDate(0, 0, 2), Value: 30},
			{Date: start, Value: 10},
			{Date: start.AddDate(0, 0, 1), Value: 20},
		}
		res := calc.Compute(pts)
		assert.Equal(t, TrendIncreasing, res.TrendDirection)
	})

	t.Run("decreasing_trend", func(t *testing.T) {
		res := calc.Compute(dailySeries(start, 100, 90, 80, 70, 60, 50))
		assert.Equal(t, TrendDecreasing, res.TrendDirection)
		assert.Greater(t, res.TrendStrength, 0.0)
	})

	t.Run("epsilon_widens_stable_band", func(t *testing.T) {
		drifting := dailySeries(start, 100, 100.01, 100.02, 100.01, 100.03)
		assert.Equal(t, TrendStable, New(0.05).Compute(drifting).TrendDirection)
	})

	t.Run("fewer_than_two_points_is_all_zero", func(t *testing.T) {
		assert.Equal(t, Result{TrendDirection: TrendStable}, calc.Compute(nil))
		assert.Equal(t, Result{TrendDirection: TrendStable}, calc.Compute(dailySeries(start, 42)))
	})
}
