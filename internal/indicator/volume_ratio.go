package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

// VolumeRatio compares each bar's volume with its rolling average.
type VolumeRatio struct{}

// NewVolumeRatio creates a new VolumeRatio indicator.
func NewVolumeRatio() Indicator {
	return &VolumeRatio{}
}

// Name returns the name of the indicator.
func (v *VolumeRatio) Name() types.IndicatorType {
	return types.IndicatorTypeVolumeRatio
}

// Validate fills the default period and checks it.
func (v *VolumeRatio) Validate(spec Spec) (Spec, error) {
	if spec.Period == 0 {
		spec.Period = defaultMAPeriod
	}

	return requirePeriod(spec, 2)
}

// Warmup returns period-1.
func (v *VolumeRatio) Warmup(spec Spec) int {
	return spec.Period - 1
}

// Compute returns volume / SMA(volume) under spec.Name. Bars whose average
// volume is zero have no value.
func (v *VolumeRatio) Compute(spec Spec, bars []types.Bar) map[string][]float64 {
	warmup := v.Warmup(spec)
	if len(bars) <= warmup {
		return map[string][]float64{spec.Name: nanSeries(len(bars))}
	}

	vols := volumes(bars)

	return map[string][]float64{
		spec.Name: mask(ratio(vols, talib.Sma(vols, spec.Period), 0), warmup),
	}
}
