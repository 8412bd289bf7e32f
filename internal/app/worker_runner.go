package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"food-delivery-Orurh/internal/config"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/service/orders"
)

// WorkerRunner runs the order-side consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type workerRunIn struct {
	dig.In

	Ctx       context.Context
	Cfg       *config.Config
	Logger    logx.Logger
	Pool      *pgxpool.Pool
	Debug     *http.Server `name:"debug_server" optional:"true"`
	Processor *orders.Processor
	Consumers consumerFactory
	Bus       *eventBus
	Inbox     *inboxHandle
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(in workerRunIn) error {
	if in.Cfg.Bus.Kind == config.BusLocal {
		return errors.New("order-worker needs a broker: the local bus only reaches its own process")
	}
	defer closeAll(in.Logger, in.Bus, in.Inbox, in.Pool)

	g, ctx := errgroup.WithContext(in.Ctx)
	if in.Debug != nil {
		g.Go(func() error { return serve(ctx, in.Debug, in.Logger) })
	}
	g.Go(func() error {
		if err := waitReady(ctx, in.Pool, in.Cfg.Delivery.SubscribeDelay, in.Logger); err != nil {
			return ignoreCanceled(err)
		}
		in.Logger.Info("order-worker started", logx.String("bus", in.Cfg.Bus.Kind))
		return in.Consumers(orders.Service).Run(ctx, in.Processor.Keys(), in.Processor.Handle)
	})
	return g.Wait()
}
