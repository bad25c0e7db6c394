package broker

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/shopspring/decimal"
)

// SimulatedBroker fills every order immediately at the close of the last marked
// bar. It holds at most one net position.
type SimulatedBroker struct {
	validate   *validator.Validate
	commission commission_fee.CommissionFee

	bar       types.Bar
	marked    bool
	cash      decimal.Decimal
	quantity  decimal.Decimal
	avgPrice  decimal.Decimal
	realized  decimal.Decimal
	totalFees decimal.Decimal
}

// NewSimulatedBroker creates a broker holding initialCash and no position.
func NewSimulatedBroker(initialCash float64, commission commission_fee.CommissionFee) *SimulatedBroker {
	return &SimulatedBroker{
		validate:   validator.New(),
		commission: commission,
		cash:       decimal.NewFromFloat(initialCash),
		quantity:   decimal.Zero,
		avgPrice:   decimal.Zero,
		realized:   decimal.Zero,
		totalFees:  decimal.Zero,
	}
}

// OnBar implements Broker.
func (b *SimulatedBroker) OnBar(bar types.Bar) error {
	if !(bar.Close > 0) || math.IsInf(bar.Close, 0) {
		return errors.Newf(errors.ErrCodeMalformedBar, "cannot mark to close %v on bar %d", bar.Close, bar.Index)
	}

	b.bar = bar
	b.marked = true

	return nil
}

// Buy implements Broker.
func (b *SimulatedBroker) Buy(quantity float64, reason string) (Fill, error) {
	return b.execute(Order{ID: uuid.New().String(), Side: OrderSideBuy, Quantity: quantity, Reason: reason})
}

// Sell implements Broker.
func (b *SimulatedBroker) Sell(quantity float64, reason string) (Fill, error) {
	return b.execute(Order{ID: uuid.New().String(), Side: OrderSideSell, Quantity: quantity, Reason: reason})
}

// Close implements Broker.
func (b *SimulatedBroker) Close(reason string) (Fill, error) {
	if b.quantity.IsZero() {
		return Fill{}, errors.New(errors.ErrCodePositionNotFound, "no open position to close")
	}

	qty, _ := b.quantity.Abs().Float64()
	if b.quantity.IsPositive() {
		return b.Sell(qty, reason)
	}

	return b.Buy(qty, reason)
}

// Account implements Broker.
func (b *SimulatedBroker) Account() types.Account {
	cash, _ := b.cash.Float64()
	qty, _ := b.quantity.Float64()
	realized, _ := b.realized.Float64()
	fees, _ := b.totalFees.Float64()

	equity := cash
	if b.marked {
		equity, _ = b.cash.Add(b.quantity.Mul(decimal.NewFromFloat(b.bar.Close))).Float64()
	}

	return types.Account{
		Cash:        cash,
		Equity:      equity,
		Quantity:    qty,
		RealizedPnL: realized,
		TotalFees:   fees,
	}
}

// Fee implements Broker.
func (b *SimulatedBroker) Fee(quantity float64, price float64) float64 {
	return b.commission.Calculate(quantity, price)
}

func (b *SimulatedBroker) execute(order Order) (Fill, error) {
	if err := b.validate.Struct(order); err != nil {
		return Fill{}, errors.Wrap(errors.ErrCodeOrderFailed, "invalid order", err)
	}

	if math.IsInf(order.Quantity, 0) {
		return Fill{}, errors.Newf(errors.ErrCodeOrderFailed, "invalid order quantity %v", order.Quantity)
	}

	if !b.marked {
		return Fill{}, errors.New(errors.ErrCodeMarketDataMissing, "no bar marked before order")
	}

	price := decimal.NewFromFloat(b.bar.Close)
	qty := decimal.NewFromFloat(order.Quantity)
	fee := decimal.NewFromFloat(b.commission.Calculate(order.Quantity, b.bar.Close))

	signed := qty
	if order.Side == OrderSideSell {
		signed = qty.Neg()
	}

	// buying more long exposure must be paid from cash
	if order.Side == OrderSideBuy && !b.quantity.IsNegative() {
		if qty.Mul(price).Add(fee).GreaterThan(b.cash) {
			return Fill{}, errors.Newf(errors.ErrCodeOrderFailed,
				"order cost %s exceeds available cash %s", qty.Mul(price).Add(fee).StringFixed(2), b.cash.StringFixed(2))
		}
	}

	realized := decimal.Zero
	next := b.quantity.Add(signed)

	switch {
	case b.quantity.IsZero() || b.quantity.Sign() == signed.Sign():
		// opening or adding: weighted average entry
		total := b.quantity.Abs().Add(qty)
		b.avgPrice = b.avgPrice.Mul(b.quantity.Abs()).Add(price.Mul(qty)).Div(total)
	default:
		closed := decimal.Min(qty, b.quantity.Abs())
		direction := decimal.NewFromInt(int64(b.quantity.Sign()))
		realized = price.Sub(b.avgPrice).Mul(closed).Mul(direction)

		switch {
		case next.IsZero():
			b.avgPrice = decimal.Zero
		case next.Sign() != b.quantity.Sign():
			// flipped through zero, remainder opens at this price
			b.avgPrice = price
		}
	}

	b.cash = b.cash.Sub(signed.Mul(price)).Sub(fee)
	b.quantity = next
	b.realized = b.realized.Add(realized)
	b.totalFees = b.totalFees.Add(fee)

	fillPrice, _ := price.Float64()
	fillFee, _ := fee.Float64()
	fillPnL, _ := realized.Float64()

	return Fill{
		OrderID:  order.ID,
		Side:     order.Side,
		Quantity: order.Quantity,
		Price:    fillPrice,
		Fee:      fillFee,
		PnL:      fillPnL,
		Time:     b.bar.Time,
	}, nil
}
