package indicator

import (
	"maps"
	"math"
	"slices"

	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// Prepare validates specs against the registry and fills per-type defaults.
// Output names must be unique across all specs.
func Prepare(registry IndicatorRegistry, specs []Spec) ([]Spec, error) {
	prepared := make([]Spec, 0, len(specs))
	outputs := make(map[string]struct{})

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidIndicator, "indicator of type %s has no name", spec.Type)
		}

		ind, err := registry.GetIndicator(spec.Type)
		if err != nil {
			return nil, err
		}

		spec, err = ind.Validate(spec)
		if err != nil {
			return nil, err
		}

		// probe with no bars to learn the output keys
		for key := range ind.Compute(spec, nil) {
			if _, dup := outputs[key]; dup {
				return nil, errors.Newf(errors.ErrCodeInvalidIndicator, "signal %s is produced by more than one indicator", key)
			}

			outputs[key] = struct{}{}
		}

		prepared = append(prepared, spec)
	}

	return prepared, nil
}

// Apply computes every spec over bars and returns new bars carrying the
// results as signals. Existing signals are kept. Values inside the warm-up,
// or that are not finite, are omitted so rules see them as absent.
func Apply(registry IndicatorRegistry, bars []types.Bar, specs []Spec) ([]types.Bar, error) {
	prepared, err := Prepare(registry, specs)
	if err != nil {
		return nil, err
	}

	values := make([]map[string]float64, len(bars))
	for i, bar := range bars {
		values[i] = make(map[string]float64, bar.Signals.Len()+len(prepared))
		maps.Insert(values[i], bar.Signals.All())
	}

	for _, spec := range prepared {
		// GetIndicator succeeded in Prepare
		ind, _ := registry.GetIndicator(spec.Type)

		series := ind.Compute(spec, bars)
		for _, key := range slices.Sorted(maps.Keys(series)) {
			for i, v := range series[key] {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}

				values[i][key] = v
			}
		}
	}

	out := make([]types.Bar, len(bars))
	for i, bar := range bars {
		bar.Signals = types.NewSignals(values[i])
		out[i] = bar
	}

	return out, nil
}
