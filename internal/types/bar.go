package types

import (
	"iter"
	"maps"
	"slices"
	"time"
)

// Signals is an immutable set of named per-bar indicator values.
// A name is absent while its indicator is still warming up.
type Signals struct {
	values map[string]float64
}

// NewSignals copies values into a new Signals set.
func NewSignals(values map[string]float64) Signals {
	if len(values) == 0 {
		return Signals{}
	}

	return Signals{values: maps.Clone(values)}
}

// Get returns the named signal and whether it is present.
func (s Signals) Get(name string) (float64, bool) {
	v, ok := s.values[name]

	return v, ok
}

// Has reports whether every given name is present.
func (s Signals) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := s.values[name]; !ok {
			return false
		}
	}

	return true
}

// Len returns the number of present signals.
func (s Signals) Len() int {
	return len(s.values)
}

// Names returns the present signal names in sorted order.
func (s Signals) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// With returns a copy of s with name set to value.
func (s Signals) With(name string, value float64) Signals {
	next := make(map[string]float64, len(s.values)+1)
	maps.Copy(next, s.values)
	next[name] = value

	return Signals{values: next}
}

// All iterates over the signals in name order.
func (s Signals) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, name := range s.Names() {
			if !yield(name, s.values[name]) {
				return
			}
		}
	}
}

// Bar is one OHLCV observation plus the signals computed up to and including it.
type Bar struct {
	Index   int       `yaml:"index" json:"index" csv:"index"`
	Time    time.Time `yaml:"time" json:"time" csv:"time"`
	Open    float64   `yaml:"open" json:"open" csv:"open"`
	High    float64   `yaml:"high" json:"high" csv:"high"`
	Low     float64   `yaml:"low" json:"low" csv:"low"`
	Close   float64   `yaml:"close" json:"close" csv:"close"`
	Volume  float64   `yaml:"volume" json:"volume" csv:"volume"`
	Signals Signals   `yaml:"-" json:"-" csv:"-"`
}

// Feed is an ordered, immutable sequence of bars. It is safe to share between
// concurrently running simulations.
type Feed struct {
	bars []Bar
}

// NewFeed copies bars into a feed.
func NewFeed(bars []Bar) *Feed {
	return &Feed{bars: slices.Clone(bars)}
}

// Len returns the number of bars.
func (f *Feed) Len() int {
	return len(f.bars)
}

// At returns the i-th bar.
func (f *Feed) At(i int) Bar {
	return f.bars[i]
}

// Bars iterates over the feed from the first bar to the last. Every call
// replays the full sequence.
func (f *Feed) Bars() iter.Seq[Bar] {
	return func(yield func(Bar) bool) {
		for _, bar := range f.bars {
			if !yield(bar) {
				return
			}
		}
	}
}

// Slice returns a copy of the underlying bars.
func (f *Feed) Slice() []Bar {
	return slices.Clone(f.bars)
}
