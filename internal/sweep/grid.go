package sweep

import (
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxCells bounds the size of an expanded grid.
const MaxCells = 1_000_000

// Axis is one named parameter and the values it takes.
type Axis struct {
	Name   string
	Values []any
}

// ValuesAxis builds an axis from an explicit value list.
func ValuesAxis(name string, values ...any) Axis {
	return Axis{Name: name, Values: values}
}

// RangeAxis builds the inclusive numeric range min, min+step, ..., max.
// Values are computed in decimal so 0.1 steps do not drift.
func RangeAxis(name string, lo, hi, step float64) (Axis, error) {
	if step <= 0 {
		return Axis{}, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q: step must be positive, got %g", name, step)
	}

	if hi < lo {
		return Axis{}, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q: max %g is below min %g", name, hi, lo)
	}

	start := decimal.NewFromFloat(lo)
	end := decimal.NewFromFloat(hi)
	inc := decimal.NewFromFloat(step)

	count := end.Sub(start).Div(inc).Floor().IntPart() + 1
	if count > MaxCells {
		return Axis{}, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q: %d values exceeds the limit of %d", name, count, MaxCells)
	}

	values := make([]any, 0, count)

	for i := int64(0); i < count; i++ {
		v, _ := start.Add(inc.Mul(decimal.NewFromInt(i))).Float64()
		values = append(values, v)
	}

	return Axis{Name: name, Values: values}, nil
}

// Grid is a Cartesian product of axes in declaration order. The last axis
// varies fastest.
type Grid struct {
	Axes []Axis
}

// Size returns the number of cells the grid expands to.
func (g Grid) Size() int {
	if len(g.Axes) == 0 {
		return 0
	}

	size := 1
	for _, axis := range g.Axes {
		size *= len(axis.Values)
		if size > MaxCells {
			return MaxCells + 1
		}
	}

	return size
}

// Expand returns every cell of the grid.
func (g Grid) Expand() ([]types.ParameterSet, error) {
	seen := make(map[string]bool, len(g.Axes))

	for _, axis := range g.Axes {
		if axis.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidGrid, "axis name must not be empty")
		}

		if seen[axis.Name] {
			return nil, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q declared twice", axis.Name)
		}

		seen[axis.Name] = true

		if len(axis.Values) == 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidGrid, "axis %q has no values", axis.Name)
		}
	}

	size := g.Size()
	if size > MaxCells {
		return nil, errors.Newf(errors.ErrCodeInvalidGrid, "grid exceeds the limit of %d cells", MaxCells)
	}

	cells := make([]types.ParameterSet, 0, size)
	if size == 0 {
		return cells, nil
	}

	// odometer over axis value indices
	idx := make([]int, len(g.Axes))

	for {
		values := make(map[string]any, len(g.Axes))
		for i, axis := range g.Axes {
			values[axis.Name] = axis.Values[idx[i]]
		}

		cell, err := types.NewParameterSet(values)
		if err != nil {
			return nil, err
		}

		cells = append(cells, cell)

		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(g.Axes[pos].Values) {
				break
			}

			idx[pos] = 0
			pos--
		}

		if pos < 0 {
			return cells, nil
		}
	}
}
