package metrics

import "github.com/prometheus/client_golang/prometheus"

// Delivery holds the orchestrator collectors.
type Delivery struct {
	Transitions     *prometheus.CounterVec
	NoCapacity      prometheus.Counter
	PublishFailures *prometheus.CounterVec
}

// NewDelivery returns unregistered orchestrator collectors.
func NewDelivery() *Delivery {
	return &Delivery{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Total number of applied delivery status transitions",
		}, []string{"from", "to"}),
		NoCapacity: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_courier_pool_exhausted_total",
			Help: "Total number of courier acquisitions that found no available courier",
		}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_event_publish_failures_total",
			Help: "Total number of events that could not be published after commit",
		}, []string{"event"}),
	}
}

// Collectors lists the collectors for registration.
func (m *Delivery) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Transitions, m.NoCapacity, m.PublishFailures}
}

// Scheduler holds the timer driver collectors.
type Scheduler struct {
	TickDuration prometheus.Histogram
	Advanced     prometheus.Counter
	Failures     prometheus.Counter
}

// NewScheduler returns unregistered timer driver collectors.
func NewScheduler() *Scheduler {
	return &Scheduler{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "delivery_timer_tick_duration_seconds",
			Help:    "Duration of one pass over active deliveries",
			Buckets: prometheus.DefBuckets,
		}),
		Advanced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_timer_advanced_total",
			Help: "Total number of deliveries evaluated by the timer",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_timer_failures_total",
			Help: "Total number of per-delivery failures skipped by the timer",
		}),
	}
}

// Collectors lists the collectors for registration.
func (m *Scheduler) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.TickDuration, m.Advanced, m.Failures}
}

// NewEventsHandledTotal returns a counter of consumed events by queue and outcome.
func NewEventsHandledTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_events_handled_total",
		Help: "Total number of consumed events by queue and outcome",
	}, []string{"queue", "outcome"})
}

// NewPoolAnomalies returns a gauge of courier pool inconsistencies by kind.
func NewPoolAnomalies() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "courier_pool_anomalies",
		Help: "Couriers whose availability disagrees with active deliveries, by kind",
	}, []string{"kind"})
}

// HTTP holds the request collectors of the observability middleware.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP returns unregistered HTTP collectors labelled by method, route pattern and status.
func NewHTTP() *HTTP {
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Collectors lists the collectors for registration.
func (m *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Duration}
}
