package sweep

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// AxisConfig declares one grid axis, either as explicit values or as an
// inclusive {min, max, step} range.
type AxisConfig struct {
	Name   string  `yaml:"name" json:"name" mapstructure:"name" validate:"required" jsonschema:"title=Name,description=Strategy parameter name"`
	Values []any   `yaml:"values" json:"values,omitempty" mapstructure:"values" jsonschema:"title=Values"`
	Min    float64 `yaml:"min" json:"min,omitempty" mapstructure:"min" jsonschema:"title=Min"`
	Max    float64 `yaml:"max" json:"max,omitempty" mapstructure:"max" jsonschema:"title=Max"`
	Step   float64 `yaml:"step" json:"step,omitempty" mapstructure:"step" validate:"gte=0" jsonschema:"title=Step"`
}

// Axis converts the declaration into an Axis.
func (a AxisConfig) Axis() (Axis, error) {
	switch {
	case len(a.Values) > 0 && a.Step > 0:
		return Axis{}, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q: set either values or a range, not both", a.Name)
	case len(a.Values) > 0:
		return ValuesAxis(a.Name, a.Values...), nil
	case a.Step > 0:
		return RangeAxis(a.Name, a.Min, a.Max, a.Step)
	default:
		return Axis{}, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q: no values and no range", a.Name)
	}
}

// Config is the sweep section of a sweep file.
type Config struct {
	// Workers bounds concurrent runs. Zero means one per CPU.
	Workers int `yaml:"workers" json:"workers,omitempty" mapstructure:"workers" validate:"gte=0" jsonschema:"title=Workers,minimum=0"`
	// Seed is mixed with each cell's hash to seed that run.
	Seed int64 `yaml:"seed" json:"seed,omitempty" mapstructure:"seed" jsonschema:"title=Seed"`
	// Metric ranks the results. Defaults to final_equity.
	Metric string           `yaml:"metric" json:"metric,omitempty" mapstructure:"metric" jsonschema:"title=Metric"`
	Grid   []AxisConfig     `yaml:"grid" json:"grid,omitempty" mapstructure:"grid" validate:"dive" jsonschema:"title=Grid,description=Axes expanded as a Cartesian product in declaration order"`
	List   []map[string]any `yaml:"list" json:"list,omitempty" mapstructure:"list" jsonschema:"title=List,description=Explicit cells; used when the grid is empty"`
}

// Validate checks the tags, the metric name and that grid and list are not both set.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid sweep config", err)
	}

	if c.Metric != "" {
		if err := metrics.Validate(c.Metric); err != nil {
			return err
		}
	}

	if len(c.Grid) > 0 && len(c.List) > 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "set either grid or list, not both")
	}

	return nil
}

// Cells expands the grid or the list. With neither set the sweep is a
// single run of the base parameters.
func (c Config) Cells() ([]types.ParameterSet, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if len(c.Grid) > 0 {
		grid := Grid{Axes: make([]Axis, 0, len(c.Grid))}

		for _, decl := range c.Grid {
			axis, err := decl.Axis()
			if err != nil {
				return nil, err
			}

			grid.Axes = append(grid.Axes, axis)
		}

		return grid.Expand()
	}

	if len(c.List) > 0 {
		cells := make([]types.ParameterSet, 0, len(c.List))

		for i, values := range c.List {
			cell, err := types.NewParameterSet(values)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidGrid, err, "list entry %d", i)
			}

			cells = append(cells, cell)
		}

		return cells, nil
	}

	return []types.ParameterSet{types.MustParameterSet(nil)}, nil
}

// Options returns the orchestrator options this config describes.
func (c Config) Options() Options {
	return Options{
		Workers: c.Workers,
		Seed:    c.Seed,
		Metric:  c.Metric,
	}
}
