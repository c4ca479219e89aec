package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	t.Run("median_odd_count", func(t *testing.T) {
		assert.InDelta(t, 3.0, Percentile([]float64{1, 2, 3, 4, 5}, 50), 1e-9)
	})

	t.Run("median_even_count_interpolates", func(t *testing.T) {
		assert.InDelta(t, 2.5, Percentile([]float64{1, 2, 3, 4}, 50), 1e-9)
	})

	t.Run("unsorted_input", func(t *testing.T) {
		assert.InDelta(t, 3.0, Percentile([]float64{5, 1, 4, 2, 3}, 50), 1e-9)
	})

	t.Run("bounds", func(t *testing.T) {
		values := []float64{10, 20, 30}
		assert.Equal(t, 10.0, Percentile(values, 0))
		assert.Equal(t, 30.0, Percentile(values, 100))
	})

	t.Run("empty_returns_zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Percentile(nil, 50))
	})

	t.Run("does_not_mutate_input", func(t *testing.T) {
		values := []float64{3, 1, 2}
		Percentile(values, 50)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})
}

func TestStdDev(t *testing.T) {
	t.Run("constant_series_is_zero", func(t *testing.T) {
		assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5, 5}))
	})

	t.Run("empty_is_zero", func(t *testing.T) {
		assert.Equal(t, 0.0, StdDev(nil))
	})

	t.Run("population_divisor", func(t *testing.T) {
		// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
		assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	})
}

func TestHHI(t *testing.T) {
	t.Run("single_entity_is_10000", func(t *testing.T) {
		assert.InDelta(t, 10000.0, HHI([]float64{42}), 1e-9)
	})

	t.Run("equal_split_is_10000_over_n", func(t *testing.T) {
		assert.InDelta(t, 2500.0, HHI([]float64{1, 1, 1, 1}), 1e-9)
		assert.InDelta(t, 1000.0, HHI([]float64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7}), 1e-9)
	})

	t.Run("scale_invariant", func(t *testing.T) {
		assert.InDelta(t, HHI([]float64{1, 2, 3}), HHI([]float64{100, 200, 300}), 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		h := HHI([]float64{1, 5, 20, 3, 0.5})
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, 10000.0)
	})

	t.Run("empty_or_zero_sum_is_zero", func(t *testing.T) {
		assert.Equal(t, 0.0, HHI(nil))
		assert.Equal(t, 0.0, HHI([]float64{0, 0}))
	})
}

func TestGrowthRate(t *testing.T) {
	t.Run("positive_growth", func(t *testing.T) {
		assert.InDelta(t, 50.0, GrowthRate(150, 100), 1e-9)
	})

	t.Run("negative_growth", func(t *testing.T) {
		assert.InDelta(t, -25.0, GrowthRate(75, 100), 1e-9)
	})

	t.Run("zero_previous_guards_to_zero", func(t *testing.T) {
		assert.Equal(t, 0.0, GrowthRate(100, 0))
	})
}

func TestMovingAverage(t *testing.T) {
	t.Run("trailing_window", func(t *testing.T) {
		got := MovingAverage([]float64{1, 2, 3, 4, 5}, 2)
		assert.Equal(t, []float64{1, 1.5, 2.5, 3.5, 4.5}, got)
	})

	t.Run("window_larger_than_series", func(t *testing.T) {
		got := MovingAverage([]float64{2, 4}, 10)
		assert.Equal(t, []float64{2, 3}, got)
	})

	t.Run("empty_returns_nil", func(t *testing.T) {
		assert.Nil(t, MovingAverage(nil, 3))
	})
}

func TestSlopeOf(t *testing.T) {
	t.Run("linear_series", func(t *testing.T) {
		assert.InDelta(t, 2.0, SlopeOf([]float64{1, 3, 5, 7}), 1e-9)
	})

	t.Run("flat_series", func(t *testing.T) {
		assert.Equal(t, 0.0, SlopeOf([]float64{4, 4, 4}))
	})

	t.Run("too_few_points", func(t *testing.T) {
		assert.Equal(t, 0.0, SlopeOf([]float64{9}))
	})
}
