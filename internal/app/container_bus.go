package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/config"
	"food-delivery-Orurh/internal/inbox"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/metrics"
	"food-delivery-Orurh/internal/service/coordinator"
	"food-delivery-Orurh/internal/service/orders"
	"food-delivery-Orurh/internal/transport/amqp"
	"food-delivery-Orurh/internal/transport/kafka"
)

// eventBus is the configured transport with its closer.
type eventBus struct {
	bus.Publisher
	bus.Subscriber
	close func() error
}

func (b *eventBus) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

var (
	dialAMQP = amqp.Dial
	newKafka = kafka.New
)

func newEventBus(cfg *config.Config, logger logx.Logger) (*eventBus, error) {
	switch cfg.Bus.Kind {
	case config.BusKafka:
		b, err := newKafka(logger, cfg.Bus.Brokers)
		if err != nil {
			return nil, err
		}
		return &eventBus{Publisher: b, Subscriber: b, close: b.Close}, nil
	case config.BusLocal:
		b := bus.NewLocal(logger)
		return &eventBus{Publisher: b, Subscriber: b}, nil
	case config.BusAMQP:
		b, err := dialAMQP(logger, cfg.Bus.URL, cfg.Bus.Exchange)
		if err != nil {
			return nil, err
		}
		return &eventBus{Publisher: b, Subscriber: b, close: b.Close}, nil
	default:
		return nil, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
	}
}

// declareLocalQueues binds every queue this process consumes on the in-process bus, so
// events published before the consumers subscribe wait in their queues.
func declareLocalQueues(eb *eventBus, coord *coordinator.Processor, ord *orders.Processor) {
	local, ok := eb.Subscriber.(*bus.Local)
	if !ok {
		return
	}
	for _, key := range coord.Keys() {
		local.Declare(bus.QueueName(coordinator.Service, key), key)
	}
	for _, key := range ord.Keys() {
		local.Declare(bus.QueueName(orders.Service, key), key)
	}
}

// inboxHandle is the dedupe store; Close releases the redis client if any.
type inboxHandle struct {
	Inbox bus.Inbox
	close func() error
}

func (h *inboxHandle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

var newRedisClient = inbox.NewRedisClient

func newInbox(ctx context.Context, cfg *config.Config, logger logx.Logger) (*inboxHandle, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("inbox disabled: REDIS_ADDR is empty")
		return &inboxHandle{Inbox: inbox.Nop{}}, nil
	}
	client, err := newRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	return &inboxHandle{Inbox: inbox.NewRedis(client, cfg.Redis.InboxTTL), close: client.Close}, nil
}

// consumerFactory builds the consumer of one service.
type consumerFactory func(service string) bus.Consumer

type consumerIn struct {
	dig.In

	Bus     *eventBus
	Inbox   *inboxHandle
	Logger  logx.Logger
	Handled *prometheus.CounterVec `name:"events_handled_total"`
}

func newConsumerFactory(in consumerIn) consumerFactory {
	return func(service string) bus.Consumer {
		return bus.Consumer{
			Subscriber: in.Bus,
			Service:    service,
			Logger:     in.Logger.With(logx.String("service", service)),
			Inbox:      in.Inbox.Inbox,
			Handled:    in.Handled,
		}
	}
}

func registerBus(container *dig.Container) error {
	if err := provideAll(container, newEventBus, newInbox, newConsumerFactory); err != nil {
		return err
	}
	handled := func(reg *prometheus.Registry) (*prometheus.CounterVec, error) {
		c := metrics.NewEventsHandledTotal()
		return c, register(reg, c)
	}
	return container.Provide(handled, dig.Name("events_handled_total"))
}
