package delivery

import "github.com/shopspring/decimal"

// Pricing bounds, minutes.
const (
	DefaultPreparationMinutes = 15
	MinPreparationMinutes     = 5
	MaxPreparationMinutes     = 60
	BaseDeliveryMinutes       = 15
	DeliveryMinutesPerStep    = 5
	MaxTotalMinutes           = 90
	MinTotalMinutes           = 20
)

// priceStep is the order total that adds one DeliveryMinutesPerStep to the delivery phase.
var priceStep = decimal.NewFromInt(500)

type defaultEstimateFactory struct{}

// NewEstimateFactory - creates the default EstimateFactory.
func NewEstimateFactory() EstimateFactory {
	return defaultEstimateFactory{}
}

// Estimate returns the phase durations for an order.
func (defaultEstimateFactory) Estimate(total decimal.Decimal, maxPrep int) Estimate {
	prep := maxPrep
	switch {
	case prep <= 0:
		prep = DefaultPreparationMinutes
	case prep < MinPreparationMinutes:
		prep = MinPreparationMinutes
	case prep > MaxPreparationMinutes:
		prep = MaxPreparationMinutes
	}

	steps := int64(0)
	if total.IsPositive() {
		steps = total.Div(priceStep).Floor().IntPart()
	}
	// anything past the cap is cut below anyway
	if steps > MaxTotalMinutes {
		steps = MaxTotalMinutes
	}
	deliveryMin := BaseDeliveryMinutes + int(steps)*DeliveryMinutesPerStep

	switch sum := prep + deliveryMin; {
	case sum > MaxTotalMinutes:
		deliveryMin = MaxTotalMinutes - prep
	case sum < MinTotalMinutes:
		deliveryMin = MinTotalMinutes - prep
	}

	return Estimate{
		PreparationMinutes: prep,
		DeliveryMinutes:    deliveryMin,
		TotalMinutes:       prep + deliveryMin,
	}
}
