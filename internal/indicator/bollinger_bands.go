package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

const defaultBandWidth = 2.0

// BollingerBands writes <name>_upper, <name>_middle and <name>_lower. The
// middle band is the SMA of the close.
type BollingerBands struct{}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands() Indicator {
	return &BollingerBands{}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBBands
}

// Validate fills the default period and width and checks them.
func (b *BollingerBands) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	if spec.StdDev == 0 {
		spec.StdDev = defaultBandWidth
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (b *BollingerBands) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns the three band series.
func (b *BollingerBands) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := b.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{
			spec.Name + "_upper":  nanSeries(len(bars)),
			spec.Name + "_middle": nanSeries(len(bars)),
			spec.Name + "_lower":  nanSeries(len(bars)),
		}
	}

	upper, middle, lower := talib.BBands(closes(bars), spec.Period, spec.StdDev, spec.StdDev, talib.SMA)

	return map[string][]float64{
		spec.Name + "_upper":  mask(upper, warmup),
		spec.Name + "_middle": mask(middle, warmup),
		spec.Name + "_lower":  mask(lower, warmup),
	}
}
