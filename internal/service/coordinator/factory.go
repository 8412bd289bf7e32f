package coordinator

import (
	"context"
	"maps"
	"slices"

	"food-delivery-Orurh/internal/domain"
)

type actionFunc func(context.Context, domain.Event) error

type actionFactory struct {
	byType map[domain.EventType]actionFunc
}

func newActionFactory(p *Processor) *actionFactory {
	return &actionFactory{
		byType: map[domain.EventType]actionFunc{
			domain.EventOrderCreated:          p.onCreated,
			domain.EventOrderReadyForDelivery: p.onReady,
			domain.EventPaymentConfirmed:      p.onPaid,
			domain.EventOrderCancelled:        p.onCancelled,
		},
	}
}

func (f *actionFactory) get(t domain.EventType) (actionFunc, bool) {
	fn, ok := f.byType[t]
	return fn, ok
}

func (f *actionFactory) keys() []domain.EventType {
	return slices.Sorted(maps.Keys(f.byType))
}
