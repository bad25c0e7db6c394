package commission_fee

import (
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

type CommissionFee interface {
	// Calculate the commission fee for a fill of quantity units at price and returns the fee in quote currency
	Calculate(quantity float64, price float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
	BrokerPercentage        Broker = "percentage"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerZero,
	BrokerPercentage,
}

// GetCommissionFeeHandler returns the fee model for broker. rate is only used
// by the percentage model.
func GetCommissionFeeHandler(broker Broker, rate float64) (CommissionFee, error) {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee(), nil
	case BrokerZero, "":
		return NewZeroCommissionFee(), nil
	case BrokerPercentage:
		if rate < 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "commission rate must not be negative, got %v", rate)
		}

		return NewPercentageCommissionFee(rate), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown broker %q", broker)
	}
}
