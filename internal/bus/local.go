package bus

import (
	"context"
	"sync"
	"time"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

const defaultMaxRedeliveries = 3

// Local is an in-process bus with the same envelope and ack semantics as the brokers.
// Every queue bound to a routing key gets its own copy of the message.
type Local struct {
	mu     sync.Mutex
	queues map[string]*localQueue
	now    func() time.Time
	logger logx.Logger

	maxRedeliveries int
}

type localQueue struct {
	key domain.EventType
	ch  chan delivery
}

type delivery struct {
	body     []byte
	attempts int
}

// NewLocal creates an in-process bus.
func NewLocal(logger logx.Logger) *Local {
	return &Local{
		queues:          make(map[string]*localQueue),
		now:             time.Now,
		logger:          logger,
		maxRedeliveries: defaultMaxRedeliveries,
	}
}

// Declare binds queue to key so messages published before Subscribe are kept.
func (b *Local) Declare(queue string, key domain.EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.declare(queue, key)
}

func (b *Local) declare(queue string, key domain.EventType) *localQueue {
	q, ok := b.queues[queue]
	if !ok {
		q = &localQueue{key: key, ch: make(chan delivery, 1024)}
		b.queues[queue] = q
	}
	return q
}

// Publish encodes ev and enqueues it to every queue bound to its type.
func (b *Local) Publish(ctx context.Context, ev domain.Event) error {
	env, err := NewEnvelope(ev, b.now())
	if err != nil {
		return err
	}
	body, err := env.Encode()
	if err != nil {
		return err
	}

	b.mu.Lock()
	var targets []*localQueue
	for _, q := range b.queues {
		if q.key == env.Type {
			targets = append(targets, q)
		}
	}
	b.mu.Unlock()

	for _, q := range targets {
		select {
		case q.ch <- delivery{body: body}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe consumes queue until ctx is done.
func (b *Local) Subscribe(ctx context.Context, queue string, key domain.EventType, h Handler) error {
	b.mu.Lock()
	q := b.declare(queue, key)
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-q.ch:
			b.handle(ctx, queue, q, d, h)
		}
	}
}

func (b *Local) handle(ctx context.Context, queue string, q *localQueue, d delivery, h Handler) {
	env, err := Decode(d.body)
	if err == nil {
		err = h(ctx, env)
	}

	switch Classify(err) {
	case Ack:
	case Drop:
		b.logger.Error("event dropped",
			logx.String("queue", queue),
			logx.Err(err),
		)
	case Requeue:
		d.attempts++
		if d.attempts > b.maxRedeliveries {
			b.logger.Error("event dropped after redeliveries",
				logx.String("queue", queue),
				logx.Int("attempts", d.attempts),
				logx.Err(err),
			)
			return
		}
		b.logger.Warn("event requeued",
			logx.String("queue", queue),
			logx.Int("attempts", d.attempts),
			logx.Err(err),
		)
		select {
		case q.ch <- d:
		default:
			b.logger.Error("queue full, event dropped", logx.String("queue", queue))
		}
	}
}
