// Package kafka carries bus envelopes over Kafka: one topic per routing key and one
// consumer group per queue name, so every subscribing service gets its own copy.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

// ErrNoBrokers is returned when the bus is configured without brokers.
var ErrNoBrokers = errors.New("kafka: no brokers configured")

const defaultRetryDelay = time.Second

var (
	newConsumerGroup = sarama.NewConsumerGroup
	newSyncProducer  = sarama.NewSyncProducer
)

// Bus publishes and consumes envelopes through Kafka.
type Bus struct {
	brokers  []string
	cfg      *sarama.Config
	producer sarama.SyncProducer
	logger   logx.Logger
	now      func() time.Time

	retryDelay time.Duration
}

// New connects a producer to the brokers.
func New(logger logx.Logger, brokers []string) (*Bus, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return &Bus{
		brokers:    brokers,
		cfg:        cfg,
		producer:   producer,
		logger:     logger,
		now:        time.Now,
		retryDelay: defaultRetryDelay,
	}, nil
}

// Publish sends ev to the topic named after its type, keyed by order id.
func (b *Bus) Publish(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := bus.NewEnvelope(ev, b.now())
	if err != nil {
		return err
	}
	body, err := env.Encode()
	if err != nil {
		return err
	}

	_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
		Topic: string(env.Type),
		Key:   sarama.StringEncoder(ev.AggregateID()),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(env.ID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", env.Type, err)
	}
	return nil
}

// Subscribe joins the consumer group named queue on the topic of key and handles
// messages until ctx is done. Consume errors are logged and retried.
func (b *Bus) Subscribe(ctx context.Context, queue string, key domain.EventType, h bus.Handler) error {
	group, err := newConsumerGroup(b.brokers, queue, b.cfg)
	if err != nil {
		return fmt.Errorf("kafka consumer group %s: %w", queue, err)
	}
	defer func() {
		if err := group.Close(); err != nil {
			b.logger.Warn("kafka consumer group close failed", logx.String("queue", queue), logx.Err(err))
		}
	}()

	gh := &groupHandler{queue: queue, handler: h, logger: b.logger}
	for {
		err := group.Consume(ctx, []string{string(key)}, gh)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case err != nil:
			b.logger.Error("kafka consume error", logx.String("queue", queue), logx.Err(err))
		case gh.failed.Swap(false):
			// sarama возвращает nil, даже если ConsumeClaim упал
			b.logger.Warn("kafka session ended on handler error, backing off",
				logx.String("queue", queue),
				logx.Duration("delay", b.retryDelay),
			)
		default:
			continue
		}
		if !b.sleep(ctx) {
			return nil
		}
	}
}

func (b *Bus) sleep(ctx context.Context) bool {
	t := time.NewTimer(b.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close flushes and closes the producer.
func (b *Bus) Close() error {
	return b.producer.Close()
}

type groupHandler struct {
	queue   string
	handler bus.Handler
	logger  logx.Logger

	// failed is set when a claim stopped on a transient handler error.
	failed atomic.Bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks handled and permanently failed messages. A transient failure ends
// the session without marking so the message is consumed again after the rebalance.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-sess.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handle(sess, msg); err != nil {
				h.failed.Store(true)
				return err
			}
		}
	}
}

func (h *groupHandler) handle(sess sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) error {
	env, err := bus.Decode(msg.Value)
	if err == nil {
		err = h.handler(sess.Context(), env)
	}

	switch bus.Classify(err) {
	case bus.Ack:
		sess.MarkMessage(msg, "")
	case bus.Drop:
		h.logger.Error("kafka event dropped",
			logx.String("queue", h.queue),
			logx.Int64("offset", msg.Offset),
			logx.Err(err),
		)
		sess.MarkMessage(msg, "")
	case bus.Requeue:
		h.logger.Warn("kafka handle failed, retrying",
			logx.String("queue", h.queue),
			logx.Int64("offset", msg.Offset),
			logx.String("event_id", env.ID.String()),
			logx.Err(err),
		)
		return err
	}
	return nil
}
