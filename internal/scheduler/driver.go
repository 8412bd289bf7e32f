// Package scheduler drives time-based delivery transitions. Each pass walks the active
// deliveries once and sleeps for the interval only after the pass is done, so passes never
// overlap.
package scheduler

import (
	"context"
	"errors"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/metrics"
)

// DefaultInterval is the pause between passes.
const DefaultInterval = 10 * time.Second

type advancer interface {
	ListActiveIDs(ctx context.Context) ([]int64, error)
	Advance(ctx context.Context, deliveryID int64) ([]domain.Event, error)
}

// Driver is the polling timer driver.
type Driver struct {
	svc      advancer
	interval time.Duration
	logger   logx.Logger
	metrics  *metrics.Scheduler
	after    func(time.Duration) <-chan time.Time
	now      func() time.Time
}

// New creates a Driver. A non-positive interval means DefaultInterval.
func New(svc advancer, interval time.Duration, logger logx.Logger, m *metrics.Scheduler) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if m == nil {
		m = metrics.NewScheduler()
	}
	return &Driver{
		svc:      svc,
		interval: interval,
		logger:   logger.With(logx.String("component", "timer_driver")),
		metrics:  m,
		after:    time.After,
		now:      time.Now,
	}
}

// Run executes passes until ctx is cancelled and returns ctx.Err().
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("timer driver started", logx.Duration("interval", d.interval))
	for {
		d.Tick(ctx)
		select {
		case <-ctx.Done():
			d.logger.Info("timer driver stopped")
			return ctx.Err()
		case <-d.after(d.interval):
		}
	}
}

// Tick advances every active delivery once. Failures are logged and skipped.
func (d *Driver) Tick(ctx context.Context) (advanced, failed int) {
	start := d.now()
	defer func() { d.metrics.TickDuration.Observe(d.now().Sub(start).Seconds()) }()

	ids, err := d.svc.ListActiveIDs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error("list active deliveries failed", logx.Err(err))
		}
		return 0, 0
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return advanced, failed
		}
		if _, err := d.svc.Advance(ctx, id); err != nil {
			failed++
			d.metrics.Failures.Inc()
			d.logFailure(id, err)
			continue
		}
		advanced++
		d.metrics.Advanced.Inc()
	}

	if failed > 0 {
		d.logger.Warn("timer pass finished with failures",
			logx.Int("advanced", advanced),
			logx.Int("failed", failed),
		)
	}
	return advanced, failed
}

func (d *Driver) logFailure(id int64, err error) {
	fields := []logx.Field{logx.Int64("delivery_id", id), logx.Err(err)}
	switch {
	case errors.Is(err, apperr.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		d.logger.Warn("advance delivery deferred", fields...)
	default:
		d.logger.Error("advance delivery failed", fields...)
	}
}
