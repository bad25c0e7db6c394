package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

const defaultRSIPeriod = 14

// RSI is Wilder's relative strength index of the close.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Validate fills the default period and checks it.
func (r *RSI) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultRSIPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period. The first value needs period price changes.
func (r *RSI) Warmup(spec Spec) int {
	return spec.Period
}

// Compute returns the RSI series under spec.Name.
func (r *RSI) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := r.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	return map[string][]float64{
		spec.Name: mask(talib.Rsi(closes(bars), spec.Period), warmup),
	}
}
