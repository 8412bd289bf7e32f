package delivery_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/metrics"
	"food-delivery-Orurh/internal/ports/deliverytx"
	"food-delivery-Orurh/internal/repository/memstore"
	"food-delivery-Orurh/internal/service/delivery"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}

type env struct {
	store   *memstore.Store
	clock   *fakeClock
	pub     *recordingPublisher
	metrics *metrics.Delivery
	svc     *delivery.Service
}

func newEnv(t *testing.T, opts ...delivery.Option) *env {
	t.Helper()
	e := &env{
		store:   memstore.New(),
		clock:   newClock(),
		pub:     &recordingPublisher{},
		metrics: metrics.NewDelivery(),
	}
	base := []delivery.Option{
		delivery.WithClock(e.clock.Now),
		delivery.WithMetrics(e.metrics),
		delivery.WithPicker(delivery.FewestDeliveriesPicker{}),
	}
	e.svc = delivery.NewDeliveryService(e.store, e.pub, logx.Nop(), append(base, opts...)...)
	return e
}

func (e *env) addCourier(name string) int64 {
	return e.store.AddCourier(domain.Courier{
		Name:        name,
		Phone:       "+7000000000" + name,
		VehicleType: domain.VehicleBicycle,
		IsAvailable: true,
		Rating:      5,
	})
}

func (e *env) create(t *testing.T, orderID string) domain.Delivery {
	t.Helper()
	d, created, err := e.svc.CreateDelivery(context.Background(), delivery.CreateInput{
		OrderID:            orderID,
		Address:            "Main st. 1",
		OrderTotal:         decimal.NewFromInt(500),
		MaxPreparationTime: 20,
	})
	require.NoError(t, err)
	require.True(t, created)
	return d
}

func (e *env) get(t *testing.T, id int64) domain.Delivery {
	t.Helper()
	d, err := e.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return d
}

// stubStore lets tests script the store's answers.
type stubStore struct {
	*memstore.Store
	serializableErr error
}

func (s *stubStore) WithSerializableTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	if s.serializableErr != nil {
		return s.serializableErr
	}
	return s.Store.WithSerializableTx(ctx, fn)
}

var errBoom = errors.New("boom")
