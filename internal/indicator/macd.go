package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

const (
	defaultMACDFast   = 12
	defaultMACDSlow   = 26
	defaultMACDSignal = 9
)

// MACD writes three series: the MACD line under the configured name, the signal
// line under <name>_signal and the histogram under <name>_hist.
type MACD struct{}

// NewMACD creates a new MACD indicator.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Validate fills the default periods and checks them.
func (m *MACD) Validate(spec Spec) (Spec, error) {
	if spec.Fast == 0 {
		spec.Fast = defaultMACDFast
	}

	if spec.Slow == 0 {
		spec.Slow = defaultMACDSlow
	}

	if spec.Signal == 0 {
		spec.Signal = defaultMACDSignal
	}

	if spec.Fast < 2 || spec.Signal < 2 {
		return spec, errors.Newf(errors.ErrCodeInvalidPeriod,
			"indicator %s: fast and signal periods must be at least 2", spec.Name)
	}

	if spec.Slow <= spec.Fast {
		return spec, errors.Newf(errors.ErrCodeInvalidPeriod,
			"indicator %s: slow period %d must exceed fast period %d", spec.Name, spec.Slow, spec.Fast)
	}

	return spec, nil
}

// Warmup returns the slow lookback plus the signal lookback.
func (m *MACD) Warmup(spec Spec) int {
	return (spec.Slow - 1) + (spec.Signal - 1)
}

// Compute returns the MACD, signal and histogram series.
func (m *MACD) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := m.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{
			spec.Name:             nanSeries(len(bars)),
			spec.Name + "_signal": nanSeries(len(bars)),
			spec.Name + "_hist":   nanSeries(len(bars)),
		}
	}

	line, signal, hist := talib.Macd(closes(bars), spec.Fast, spec.Slow, spec.Signal)

	return map[string][]float64{
		spec.Name:             mask(line, warmup),
		spec.Name + "_signal": mask(signal, warmup),
		spec.Name + "_hist":   mask(hist, warmup),
	}
}
