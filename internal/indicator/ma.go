package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

const defaultMAPeriod = 20

// SMA is the simple moving average of the close.
type SMA struct{}

// NewSMA creates a new SMA indicator.
func NewSMA() Indicator {
	return &SMA{}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Validate fills the default period and checks it.
func (s *SMA) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (s *SMA) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the SMA series under spec.Name.
func (s *SMA) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := s.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	return map[string][]float64{
		spec.Name: mask(talib.Sma(closes(bars), spec.Period), warmup),
	}
}

// EMA is the exponential moving average of the close, seeded with the SMA
// of the first period bars.
type EMA struct{}

// NewEMA creates a new EMA indicator.
func NewEMA() Indicator {
	return &EMA{}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Validate fills the default period and checks it.
func (e *EMA) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (e *EMA) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the EMA series under spec.Name.
func (e *EMA) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := e.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	return map[string][]float64{
		spec.Name: mask(talib.Ema(closes(bars), spec.Period), warmup),
	}
}
