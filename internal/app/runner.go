package app

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"food-delivery-Orurh/internal/config"
	"food-delivery-Orurh/internal/jobs"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/scheduler"
	"food-delivery-Orurh/internal/service/coordinator"
	"food-delivery-Orurh/internal/service/orders"
)

// MustRun runs service-delivery using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type deliveryRunIn struct {
	dig.In

	Ctx         context.Context
	Cfg         *config.Config
	Logger      logx.Logger
	Pool        *pgxpool.Pool
	Server      *http.Server
	Debug       *http.Server `name:"debug_server" optional:"true"`
	Driver      *scheduler.Driver
	Audit       *jobs.PoolAuditJob
	Coordinator *coordinator.Processor
	Orders      *orders.Processor
	Consumers   consumerFactory
	Bus         *eventBus
	Inbox       *inboxHandle
}

func run(container *dig.Container) error {
	return container.Invoke(runDelivery)
}

func runDelivery(in deliveryRunIn) error {
	defer closeAll(in.Logger, in.Bus, in.Inbox, in.Pool)
	declareLocalQueues(in.Bus, in.Coordinator, in.Orders)

	g, ctx := errgroup.WithContext(in.Ctx)
	g.Go(func() error { return serve(ctx, in.Server, in.Logger) })
	if in.Debug != nil {
		g.Go(func() error { return serve(ctx, in.Debug, in.Logger) })
	}
	g.Go(func() error { return ignoreCanceled(in.Driver.Run(ctx)) })
	g.Go(func() error { return in.Audit.Run(ctx) })
	g.Go(func() error {
		if err := waitReady(ctx, in.Pool, in.Cfg.Delivery.SubscribeDelay, in.Logger); err != nil {
			return ignoreCanceled(err)
		}
		in.Logger.Info("consumers starting", logx.String("bus", in.Cfg.Bus.Kind))

		cg, cctx := errgroup.WithContext(ctx)
		cg.Go(func() error {
			return in.Consumers(coordinator.Service).Run(cctx, in.Coordinator.Keys(), in.Coordinator.Handle)
		})
		// локальная шина живет в одном процессе, поэтому и сторона заказов здесь
		if in.Cfg.Bus.Kind == config.BusLocal {
			cg.Go(func() error {
				return in.Consumers(orders.Service).Run(cctx, in.Orders.Keys(), in.Orders.Handle)
			})
		}
		return cg.Wait()
	})

	in.Logger.Info("service-delivery started", logx.Int("port", in.Cfg.Port))
	err := g.Wait()
	in.Logger.Info("service-delivery stopped")
	return err
}

type closer interface {
	Close() error
}

func closeAll(logger logx.Logger, bus, inbox closer, pool *pgxpool.Pool) {
	if err := bus.Close(); err != nil {
		logger.Error("bus close error", logx.Err(err))
	}
	if err := inbox.Close(); err != nil {
		logger.Error("inbox close error", logx.Err(err))
	}
	if pool != nil {
		pool.Close()
	}
	_ = logger.Sync()
}
