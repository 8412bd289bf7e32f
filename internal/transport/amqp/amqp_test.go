package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/bus"
	"food-delivery-Orurh/internal/domain"
	testlog "food-delivery-Orurh/internal/testutil"
)

type ackRecorder struct {
	mu       sync.Mutex
	acks     int
	nacks    int
	requeued int
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func (a *ackRecorder) counts() (acks, nacks, requeued int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks, a.requeued
}

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  []string
	queues     []string
	bindings   [][2]string
	published  []publishCall
	deliveries chan amqp.Delivery
	publishErr error
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 8)}
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges = append(c.exchanges, name+":"+kind)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues = append(c.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, _ string, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = append(c.bindings, [2]string{name, key})
	return nil
}

func (c *fakeChannel) Qos(int, int, bool) error { return nil }

func (c *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func newTestBus(t *testing.T, rec *testlog.Recorder, pub, sub *fakeChannel) *Bus {
	t.Helper()
	opened := 0
	b, err := newBus(rec.Logger(), "", func() (channel, error) {
		opened++
		if opened == 1 {
			return pub, nil
		}
		return sub, nil
	}, nil)
	require.NoError(t, err)
	b.requeueDelay = 0
	return b
}

func deliveryOf(t *testing.T, ack amqp.Acknowledger, ev domain.Event) amqp.Delivery {
	t.Helper()
	env, err := bus.NewEnvelope(ev, time.Now())
	require.NoError(t, err)
	body, err := env.Encode()
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, MessageId: env.ID.String(), Body: body}
}

func TestPublish_PersistentRoutedByType(t *testing.T) {
	pub := newFakeChannel()
	b := newTestBus(t, testlog.New(), pub, nil)

	require.NoError(t, b.Publish(context.Background(), domain.DeliveryAssigned{OrderID: "o-1", CourierID: 3}))

	require.Len(t, pub.published, 1)
	got := pub.published[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "delivery.assigned", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)

	env, err := bus.Decode(got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, env.ID.String(), got.msg.MessageId)
	assert.Equal(t, []string{"food.events:topic"}, pub.exchanges)
}

func TestPublish_Error(t *testing.T) {
	pub := newFakeChannel()
	pub.publishErr = amqp.ErrClosed
	b := newTestBus(t, testlog.New(), pub, nil)

	err := b.Publish(context.Background(), domain.DeliveryCompleted{OrderID: "o-1"})
	require.ErrorIs(t, err, amqp.ErrClosed)
}

func TestSubscribe_AckNackRequeue(t *testing.T) {
	rec := testlog.New()
	sub := newFakeChannel()
	b := newTestBus(t, rec, newFakeChannel(), sub)

	okAck, badAck, busyAck, junkAck := &ackRecorder{}, &ackRecorder{}, &ackRecorder{}, &ackRecorder{}
	sub.deliveries <- deliveryOf(t, okAck, domain.OrderCreated{OrderID: "ok"})
	sub.deliveries <- deliveryOf(t, badAck, domain.OrderCreated{OrderID: "bad"})
	sub.deliveries <- deliveryOf(t, busyAck, domain.OrderCreated{OrderID: "busy"})
	sub.deliveries <- amqp.Delivery{Acknowledger: junkAck, Body: []byte("junk")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- b.Subscribe(ctx, "delivery.order.created", domain.EventOrderCreated, func(_ context.Context, env bus.Envelope) error {
			defer func() { handled <- struct{}{} }()
			ev, err := env.Event()
			if err != nil {
				return err
			}
			switch ev.AggregateID() {
			case "bad":
				return bus.Permanent(errors.New("unknown order"))
			case "busy":
				return errors.New("db busy")
			}
			return nil
		})
	}()

	for i := 0; i < 3; i++ {
		<-handled
	}
	assert.Eventually(t, func() bool {
		_, n, _ := junkAck.counts()
		return n == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	acks, _, _ := okAck.counts()
	assert.Equal(t, 1, acks)
	_, nacks, requeued := badAck.counts()
	assert.Equal(t, 1, nacks)
	assert.Equal(t, 0, requeued)
	_, nacks, requeued = busyAck.counts()
	assert.Equal(t, 1, nacks)
	assert.Equal(t, 1, requeued)
	_, _, requeued = junkAck.counts()
	assert.Equal(t, 0, requeued)

	assert.Equal(t, []string{"delivery.order.created"}, sub.queues)
	assert.Equal(t, [][2]string{{"delivery.order.created", "order.created"}}, sub.bindings)
	assert.True(t, sub.closed)
	assert.True(t, rec.Has("error", "amqp event dropped"))
	assert.True(t, rec.Has("warn", "amqp handle failed, requeueing"))
}

func TestSubscribe_ClosedDeliveries(t *testing.T) {
	sub := newFakeChannel()
	close(sub.deliveries)
	b := newTestBus(t, testlog.New(), newFakeChannel(), sub)

	err := b.Subscribe(context.Background(), "q", domain.EventOrderCancelled, func(context.Context, bus.Envelope) error { return nil })
	require.ErrorIs(t, err, ErrDeliveriesClosed)
}

func TestClose_ClosesPublishChannel(t *testing.T) {
	pub := newFakeChannel()
	closed := false
	b, err := newBus(testlog.New().Logger(), "x", func() (channel, error) { return pub, nil }, func() error {
		closed = true
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.True(t, pub.closed)
	assert.True(t, closed)
}
