package bus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// Consumer subscribes one service's handler to several routing keys, one durable queue each.
type Consumer struct {
	Subscriber Subscriber
	Service    string
	Logger     logx.Logger

	// Inbox is optional; nil disables dedupe.
	Inbox Inbox
	// Handled is optional; it is labelled by queue and outcome.
	Handled *prometheus.CounterVec
}

// Run consumes every key until ctx is done or one subscription fails.
func (c Consumer) Run(ctx context.Context, keys []domain.EventType, h Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		queue := QueueName(c.Service, key)
		handler := c.wrap(queue, h)
		g.Go(func() error {
			return c.Subscriber.Subscribe(ctx, queue, key, handler)
		})
	}
	return g.Wait()
}

func (c Consumer) wrap(queue string, h Handler) Handler {
	if c.Inbox != nil {
		h = Deduplicate(queue, c.Inbox, c.Logger, h)
	}
	if c.Handled == nil {
		return h
	}
	return func(ctx context.Context, env Envelope) error {
		err := h(ctx, env)
		c.Handled.WithLabelValues(queue, Classify(err).String()).Inc()
		return err
	}
}
