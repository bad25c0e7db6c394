// Package broker fills market orders for a single simulated account.
package broker

import (
	"time"

	"github.com/rxtech-lab/argo-sweep/internal/types"
)

//go:generate mockgen -destination=../../../mocks/mock_broker.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/backtest/broker Broker

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order is a market order submitted by the simulation loop.
type Order struct {
	ID       string    `yaml:"id" json:"id" validate:"required,uuid"`
	Side     OrderSide `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Quantity float64   `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	// Reason is "entry" or an exit reason tag.
	Reason string `yaml:"reason" json:"reason" validate:"required"`
}

// Fill is the synchronous execution of an order at the current bar close.
type Fill struct {
	OrderID  string    `yaml:"order_id" json:"order_id"`
	Side     OrderSide `yaml:"side" json:"side"`
	Quantity float64   `yaml:"quantity" json:"quantity"`
	Price    float64   `yaml:"price" json:"price"`
	Fee      float64   `yaml:"fee" json:"fee"`
	// PnL is the gross realized profit of the quantity this fill closed, before fees.
	PnL  float64   `yaml:"pnl" json:"pnl"`
	Time time.Time `yaml:"time" json:"time"`
}

// Broker is the account a simulation trades against.
type Broker interface {
	// OnBar marks the account to the bar close. Orders fill at the last marked bar.
	OnBar(bar types.Bar) error
	// Buy submits a market buy of quantity units.
	Buy(quantity float64, reason string) (Fill, error)
	// Sell submits a market sell of quantity units.
	Sell(quantity float64, reason string) (Fill, error)
	// Close flattens the current position.
	Close(reason string) (Fill, error)
	// Account returns the account snapshot at the last mark.
	Account() types.Account
	// Fee quotes the commission for a hypothetical fill.
	Fee(quantity float64, price float64) float64
}
