// Package amqp carries bus envelopes over RabbitMQ: a durable topic exchange routed by
// event type, and one durable queue per subscribing service and routing key.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// DefaultExchange is the topic exchange all services share.
const DefaultExchange = "food.events"

const (
	defaultPrefetch     = 16
	defaultRequeueDelay = 500 * time.Millisecond
)

// ErrDeliveriesClosed is returned when the broker closes a consuming channel.
var ErrDeliveriesClosed = errors.New("amqp: deliveries channel closed")

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Bus publishes and consumes envelopes through RabbitMQ.
type Bus struct {
	exchange string
	logger   logx.Logger
	now      func() time.Time
	open     func() (channel, error)
	closer   func() error

	pubMu sync.Mutex
	pub   channel

	prefetch     int
	requeueDelay time.Duration
}

// Dial connects to url and declares the exchange.
func Dial(logger logx.Logger, url, exchange string) (*Bus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	open := func() (channel, error) { return conn.Channel() }

	b, err := newBus(logger, exchange, open, conn.Close)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return b, nil
}

func newBus(logger logx.Logger, exchange string, open func() (channel, error), closer func() error) (*Bus, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	pub, err := open()
	if err != nil {
		return nil, fmt.Errorf("amqp publish channel: %w", err)
	}
	if err := declareExchange(pub, exchange); err != nil {
		_ = pub.Close()
		return nil, err
	}
	return &Bus{
		exchange:     exchange,
		logger:       logger,
		now:          time.Now,
		open:         open,
		closer:       closer,
		pub:          pub,
		prefetch:     defaultPrefetch,
		requeueDelay: defaultRequeueDelay,
	}, nil
}

func declareExchange(ch channel, name string) error {
	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

// Publish sends a persistent message routed by the event type.
func (b *Bus) Publish(ctx context.Context, ev domain.Event) error {
	env, err := bus.NewEnvelope(ev, b.now())
	if err != nil {
		return err
	}
	body, err := env.Encode()
	if err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err = b.pub.PublishWithContext(ctx, b.exchange, string(env.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID.String(),
		Timestamp:    env.OccurredAt,
		Type:         string(env.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", env.Type, err)
	}
	return nil
}

// Subscribe declares queue, binds it to key and consumes with manual acks until ctx is done.
func (b *Bus) Subscribe(ctx context.Context, queue string, key domain.EventType, h bus.Handler) error {
	ch, err := b.open()
	if err != nil {
		return fmt.Errorf("amqp channel for %s: %w", queue, err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch, b.exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, string(key), b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	if err := ch.Qos(b.prefetch, 0, false); err != nil {
		return fmt.Errorf("qos %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	b.logger.Info("amqp subscribed", logx.String("queue", queue), logx.String("routing_key", string(key)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", queue, ErrDeliveriesClosed)
			}
			b.handle(ctx, queue, d, h)
		}
	}
}

func (b *Bus) handle(ctx context.Context, queue string, d amqp.Delivery, h bus.Handler) {
	env, err := bus.Decode(d.Body)
	if err == nil {
		err = h(ctx, env)
	}

	var ackErr error
	switch bus.Classify(err) {
	case bus.Ack:
		ackErr = d.Ack(false)
	case bus.Drop:
		b.logger.Error("amqp event dropped",
			logx.String("queue", queue),
			logx.String("message_id", d.MessageId),
			logx.Err(err),
		)
		ackErr = d.Nack(false, false)
	case bus.Requeue:
		b.logger.Warn("amqp handle failed, requeueing",
			logx.String("queue", queue),
			logx.String("message_id", d.MessageId),
			logx.Err(err),
		)
		select {
		case <-ctx.Done():
		case <-time.After(b.requeueDelay):
		}
		ackErr = d.Nack(false, true)
	}
	if ackErr != nil {
		b.logger.Error("amqp ack failed", logx.String("queue", queue), logx.Err(ackErr))
	}
}

// Close closes the publish channel and the connection.
func (b *Bus) Close() error {
	b.pubMu.Lock()
	err := b.pub.Close()
	b.pubMu.Unlock()
	if b.closer != nil {
		err = errors.Join(err, b.closer())
	}
	return err
}
