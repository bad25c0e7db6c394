package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// zscoreFloor keeps the z-score finite on flat price stretches.
const zscoreFloor = 1e-8

func closes(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i] = bar.Close
	}

	return out
}

func highs(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i] = bar.High
	}

	return out
}

func lows(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i] = bar.Low
	}

	return out
}

func volumes(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i] = bar.Volume
	}

	return out
}

// nanSeries returns a series of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// mask overwrites the first warmup values with NaN. talib fills the
// lookback window with zeros, which would otherwise read as real values.
func mask(values []float64, warmup int) []float64 {
	for i := 0; i < warmup && i < len(values); i++ {
		values[i] = math.NaN()
	}

	return values
}

// ratio divides a by b element-wise and yields NaN where b is not positive.
func ratio(a, b []float64, floor float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		den := b[i]
		if floor > 0 {
			den = math.Max(den, floor)
		}

		if den <= 0 || math.IsNaN(a[i]) || math.IsNaN(den) {
			out[i] = math.NaN()

			continue
		}

		out[i] = a[i] / den
	}

	return out
}

func requirePeriod(spec Spec, minimum int) (Spec, error) {
	if spec.Period < minimum {
		return spec, errors.Newf(errors.ErrCodeInvalidPeriod,
			"indicator %s: period must be at least %d, got %d", spec.Name, minimum, spec.Period)
	}

	return spec, nil
}
