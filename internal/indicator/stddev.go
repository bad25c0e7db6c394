package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

// StdDev is the rolling population standard deviation of the close.
type StdDev struct{}

// NewStdDev creates a new StdDev indicator.
func NewStdDev() Indicator {
	return &StdDev{}
}

// Name returns the name of the indicator.
func (s *StdDev) Name() types.IndicatorType {
	return types.IndicatorTypeStdDev
}

// Validate fills the default period and checks it.
func (s *StdDev) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (s *StdDev) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the standard deviation series under spec.Name.
func (s *StdDev) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := s.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	return map[string][]float64{
		spec.Name: mask(talib.StdDev(closes(bars), spec.Period, 1), warmup),
	}
}

// ZScore measures how far the close sits from its EMA in units of the
// rolling standard deviation: (close - ema) / max(std, 1e-8).
type ZScore struct{}

// NewZScore creates a new ZScore indicator.
func NewZScore() Indicator {
	return &ZScore{}
}

// Name returns the name of the indicator.
func (z *ZScore) Name() types.IndicatorType {
	return types.IndicatorTypeZScore
}

// Validate fills the default period and checks it.
func (z *ZScore) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (z *ZScore) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the z-score series under spec.Name.
func (z *ZScore) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := z.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	prices := closes(bars)
	ema := talib.Ema(prices, spec.Period)
	std := talib.StdDev(prices, spec.Period, 1)

	deviation := make([]float64, len(prices))
	for i := range prices {
		deviation[i] = prices[i] - ema[i]
	}

	return map[string][]float64{
		spec.Name: mask(ratio(deviation, std, zscoreFloor), warmup),
	}
}

// VolRatio is the rolling standard deviation divided by the EMA of the
// close, a scale-free volatility measure.
type VolRatio struct{}

// NewVolRatio creates a new VolRatio indicator.
func NewVolRatio() Indicator {
	return &VolRatio{}
}

// Name returns the name of the indicator.
func (v *VolRatio) Name() types.IndicatorType {
	return types.IndicatorTypeVolRatio
}

// Validate fills the default period and checks it.
func (v *VolRatio) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (v *VolRatio) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the volatility ratio series under spec.Name.
func (v *VolRatio) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := v.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	prices := closes(bars)

	return map[string][]float64{
		spec.Name: mask(ratio(talib.StdDev(prices, spec.Period, 1), talib.Ema(prices, spec.Period), 0), warmup),
	}
}
