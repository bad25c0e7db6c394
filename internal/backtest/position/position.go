// Package position holds the open position state of a single simulation run.
//
// A Position moves Flat -> Long|Short -> Flat and is only mutated through
// Open, Update and Close. It is owned by one run and never shared.
package position

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// Thresholds are the exit levels fixed at entry.
type Thresholds struct {
	TakeProfitPrice optional.Option[float64]
	StopLossPrice   optional.Option[float64]
	// MaxHoldBars is the time exit horizon. Zero disables it.
	MaxHoldBars int
	// TrailPct is the trailing distance as a fraction of the reference. Zero disables it.
	TrailPct float64
}

type Position struct {
	side       types.Side
	size       float64
	entryPrice optional.Option[float64]
	entryIndex int
	entryTime  time.Time
	entryFee   float64
	barsHeld   int
	trailRef   optional.Option[float64]
	thresholds Thresholds
}

// New returns a flat position.
func New() *Position {
	return &Position{side: types.SideFlat}
}

func (p *Position) Side() types.Side {
	return p.side
}

func (p *Position) Size() float64 {
	return p.size
}

func (p *Position) EntryPrice() optional.Option[float64] {
	return p.entryPrice
}

func (p *Position) EntryIndex() int {
	return p.entryIndex
}

func (p *Position) EntryTime() time.Time {
	return p.entryTime
}

func (p *Position) BarsHeld() int {
	return p.barsHeld
}

func (p *Position) TrailingReference() optional.Option[float64] {
	return p.trailRef
}

func (p *Position) Thresholds() Thresholds {
	return p.thresholds
}

// IsFlat reports whether no position is open.
func (p *Position) IsFlat() bool {
	return p.side == types.SideFlat
}

// Open enters a position at price on bar. The trailing reference starts at the entry price.
func (p *Position) Open(side types.Side, size float64, bar types.Bar, price float64, fee float64, thresholds Thresholds) error {
	if !p.IsFlat() {
		return errors.Newf(errors.ErrCodePositionExists, "cannot open %s on bar %d: already %s", side, bar.Index, p.side)
	}

	if side != types.SideLong && side != types.SideShort {
		return errors.Newf(errors.ErrCodeRunStateInvalid, "cannot open position with side %q", side)
	}

	if !(size > 0) || math.IsInf(size, 0) {
		return errors.Newf(errors.ErrCodeRunStateInvalid, "cannot open position with size %v", size)
	}

	if !(price > 0) || math.IsInf(price, 0) {
		return errors.Newf(errors.ErrCodeRunStateInvalid, "cannot open position at price %v", price)
	}

	p.side = side
	p.size = size
	p.entryPrice = optional.Some(price)
	p.entryIndex = bar.Index
	p.entryTime = bar.Time
	p.entryFee = fee
	p.barsHeld = 0
	p.trailRef = optional.Some(price)
	p.thresholds = thresholds

	return nil
}

// Update advances the holding counter and ratchets the trailing reference
// toward favourable closes. It never moves the reference against the position.
func (p *Position) Update(bar types.Bar) error {
	if p.IsFlat() {
		return errors.Newf(errors.ErrCodePositionNotFound, "cannot update flat position on bar %d", bar.Index)
	}

	if bar.Index < p.entryIndex {
		return errors.Newf(errors.ErrCodeRunStateInvalid, "bar %d precedes entry bar %d", bar.Index, p.entryIndex)
	}

	p.barsHeld = bar.Index - p.entryIndex

	ref := p.trailRef.Unwrap()
	switch p.side {
	case types.SideLong:
		p.trailRef = optional.Some(math.Max(ref, bar.Close))
	case types.SideShort:
		p.trailRef = optional.Some(math.Min(ref, bar.Close))
	}

	return nil
}

// Close exits the position on bar and returns the completed trade. grossPnL is
// the realized profit before fees; the record carries it net of entry and exit
// fees. The position is flat afterwards.
func (p *Position) Close(bar types.Bar, price float64, reason types.ExitReason, fee float64, grossPnL float64) (types.TradeRecord, error) {
	if p.IsFlat() {
		return types.TradeRecord{}, errors.Newf(errors.ErrCodePositionNotFound, "cannot close flat position on bar %d", bar.Index)
	}

	record := p.record()
	record.CloseBar = optional.Some(bar.Index)
	record.CloseTime = optional.Some(bar.Time)
	record.ExitPrice = optional.Some(price)
	record.ExitReason = optional.Some(reason)
	record.Fees = p.entryFee + fee
	record.PnL = grossPnL - record.Fees

	p.reset()

	return record, nil
}

// OpenRecord describes the position as a trade that has not closed yet.
func (p *Position) OpenRecord() (types.TradeRecord, bool) {
	if p.IsFlat() {
		return types.TradeRecord{}, false
	}

	record := p.record()
	record.Fees = p.entryFee

	return record, true
}

// Check verifies size == 0 <=> side == Flat <=> entry price is None.
func (p *Position) Check() error {
	flat := p.side == types.SideFlat
	empty := p.size == 0
	noEntry := p.entryPrice.IsNone()

	if flat != empty || flat != noEntry {
		return errors.Newf(errors.ErrCodeRunStateInvalid,
			"inconsistent position: side=%s size=%v entry=%v", p.side, p.size, p.entryPrice.IsSome())
	}

	return nil
}

func (p *Position) record() types.TradeRecord {
	return types.TradeRecord{
		OpenBar:    p.entryIndex,
		OpenTime:   p.entryTime,
		Side:       p.side,
		EntryPrice: p.entryPrice.Unwrap(),
		Size:       p.size,
		CloseBar:   optional.None[int](),
		CloseTime:  optional.None[time.Time](),
		ExitPrice:  optional.None[float64](),
		ExitReason: optional.None[types.ExitReason](),
	}
}

func (p *Position) reset() {
	*p = Position{side: types.SideFlat}
}
