package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"food-delivery-Orurh/internal/config"
	"food-delivery-Orurh/internal/http/debugserver"
	"food-delivery-Orurh/internal/http/handlers"
	"food-delivery-Orurh/internal/http/middleware"
	"food-delivery-Orurh/internal/http/router"
	"food-delivery-Orurh/internal/jobs"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/metrics"
	"food-delivery-Orurh/internal/repository"
	"food-delivery-Orurh/internal/scheduler"
	"food-delivery-Orurh/internal/service/coordinator"
	"food-delivery-Orurh/internal/service/courier"
	"food-delivery-Orurh/internal/service/delivery"
	"food-delivery-Orurh/internal/service/orders"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, maxConns int32, retries int, delay time.Duration) (*pgxpool.Pool, error)

type migrateFunc func(ctx context.Context, pool *pgxpool.Pool) error

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	migrate   migrateFunc
	loadCfg   func() (*config.Config, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		migrate:   repository.Migrate,
		loadCfg:   config.Load,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function
func (b *ContainerBuilder) WithMigrate(fn migrateFunc) *ContainerBuilder {
	if fn != nil {
		b.migrate = fn
	}
	return b
}

// WithConfig replaces config.Load
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadCfg = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the service-delivery container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the order-worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadCfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect, b.migrate); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerBus(container); err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerOrders(container); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if err := registerDebug(container); err != nil {
		return nil, fmt.Errorf("debug: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadCfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	// схему мигрирует service-delivery
	if err := registerDb(container, b.dbConnect, nil); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerBus(container); err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	if err := registerOrders(container); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	if err := registerDebug(container); err != nil {
		return nil, fmt.Errorf("debug: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the service-delivery container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the order-worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func registerCore(container *dig.Container, ctx context.Context, loadCfg func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadCfg,
		NewLogger,
		newRegistry,
	)
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc, migrate migrateFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), cfg.DB.MaxConns, dbRetries, dbRetryDelay)
		if err != nil {
			return nil, err
		}
		if migrate != nil {
			if err := migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

type deliveryServiceIn struct {
	dig.In

	Store     *repository.DeliveryRepo
	Publisher *eventBus
	Logger    logx.Logger
	Cfg       *config.Config
	Metrics   *metrics.Delivery
}

func newDeliveryService(in deliveryServiceIn) *delivery.Service {
	return delivery.NewDeliveryService(in.Store, in.Publisher, in.Logger,
		delivery.WithPicker(delivery.NewPicker(in.Cfg.Delivery.Picker)),
		delivery.WithTimeout(in.Cfg.Delivery.OperationTimeout),
		delivery.WithSimulateProbability(in.Cfg.Delivery.SimulateProbability),
		delivery.WithMetrics(in.Metrics),
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewCourierRepo,
		repository.NewDeliveryRepo,
		func(reg *prometheus.Registry) (*metrics.Delivery, error) {
			m := metrics.NewDelivery()
			return m, register(reg, m.Collectors()...)
		},
		func(reg *prometheus.Registry) (*metrics.Scheduler, error) {
			m := metrics.NewScheduler()
			return m, register(reg, m.Collectors()...)
		},
		newDeliveryService,
		func(repo *repository.CourierRepo, cfg *config.Config) *courier.Service {
			return courier.NewService(repo, cfg.Delivery.OperationTimeout)
		},
		func(svc *delivery.Service, cfg *config.Config, logger logx.Logger, m *metrics.Scheduler) *scheduler.Driver {
			return scheduler.New(svc, cfg.Delivery.TickInterval, logger, m)
		},
		func(svc *delivery.Service, logger logx.Logger) *coordinator.Processor {
			return coordinator.NewProcessor(svc, logger)
		},
		func(repo *repository.DeliveryRepo, cfg *config.Config, logger logx.Logger, reg *prometheus.Registry) (*jobs.PoolAuditJob, error) {
			gauge := metrics.NewPoolAnomalies()
			if err := register(reg, gauge); err != nil {
				return nil, err
			}
			return jobs.NewPoolAuditJob(repo, cfg.Delivery.PoolAuditSchedule, gauge, logger), nil
		},
	)
}

func registerOrders(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		func(repo *repository.OrderRepo, logger logx.Logger) *orders.Processor {
			return orders.NewProcessor(repo, logger)
		},
	)
}

func newRouter(
	h *handlers.Handlers,
	cour *handlers.CourierHandler,
	del *handlers.DeliveryHandler,
	logger logx.Logger,
	reg *prometheus.Registry,
) (http.Handler, error) {
	m := metrics.NewHTTP()
	if err := register(reg, m.Collectors()...); err != nil {
		return nil, err
	}
	return router.New(h, cour, del,
		middleware.Observability(logger, m),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	), nil
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		func(repo *repository.DeliveryRepo) handlers.Pinger { return repo },
		handlers.New,
		handlers.NewCourierUsecase,
		handlers.NewCourierHandler,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		newRouter,
		serverProvider,
	)
}

// registerDebug provides the ops server, nil when DEBUG_ADDR is empty.
func registerDebug(container *dig.Container) error {
	provider := func(cfg *config.Config, reg *prometheus.Registry, pool *pgxpool.Pool) *http.Server {
		if cfg.Debug.Addr == "" {
			return nil
		}
		h := debugserver.Handler(
			debugserver.Config{User: cfg.Debug.User, Pass: cfg.Debug.Pass},
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			pool,
		)
		return debugserver.NewServer(cfg.Debug.Addr, h)
	}
	return container.Provide(provider, dig.Name("debug_server"))
}
