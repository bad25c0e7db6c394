package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

const defaultATRPeriod = 14

// ATR is the average true range. It feeds the risk-normalized sizer and the
// ATR based stop.
type ATR struct{}

// NewATR creates a new ATR indicator.
func NewATR() Indicator {
	return &ATR{}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Validate fills the default period and checks it.
func (a *ATR) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultATRPeriod
	}

	return requirePeriod(spec, 1)
}

// Warmup returns period. True range needs a previous close.
func (a *ATR) Warmup(spec Spec) int {
	return spec.Period
}

// Compute returns the ATR series under spec.Name.
func (a *ATR) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := a.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	return map[string][]float64{
		spec.Name: mask(talib.Atr(highs(bars), lows(bars), closes(bars), spec.Period), warmup),
	}
}
