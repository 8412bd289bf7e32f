package delivery

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/lifecycle"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/metrics"
	"food-delivery-Orurh/internal/ports/deliverytx"
)

// DefaultSimulateProbability is the chance that SimulateProgress treats the current phase as elapsed.
const DefaultSimulateProbability = 0.7

// Service - orchestrates delivery transitions over the store and the courier pool.
type Service struct {
	store            deliverytx.Store
	publisher        EventPublisher
	picker           CourierPicker
	estimates        EstimateFactory
	metrics          *metrics.Delivery
	operationTimeout time.Duration
	simulateP        float64
	random           func() float64
	logger           logx.Logger
	now              func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPicker sets the courier selection policy.
func WithPicker(p CourierPicker) Option { return func(s *Service) { s.picker = p } }

// WithEstimateFactory sets the pricing policy.
func WithEstimateFactory(f EstimateFactory) Option { return func(s *Service) { s.estimates = f } }

// WithTimeout bounds every operation.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.operationTimeout = d
		}
	}
}

// WithSimulateProbability sets the chance used by SimulateProgress.
func WithSimulateProbability(p float64) Option {
	return func(s *Service) {
		if p >= 0 && p <= 1 {
			s.simulateP = p
		}
	}
}

// WithRandom replaces the source of SimulateProgress draws in [0, 1).
func WithRandom(fn func() float64) Option { return func(s *Service) { s.random = fn } }

// WithClock replaces the clock.
func WithClock(fn func() time.Time) Option { return func(s *Service) { s.now = fn } }

// WithMetrics sets the collectors.
func WithMetrics(m *metrics.Delivery) Option { return func(s *Service) { s.metrics = m } }

// NewDeliveryService - creates a new delivery Service.
func NewDeliveryService(store deliverytx.Store, publisher EventPublisher, logger logx.Logger, opts ...Option) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		store:            store,
		publisher:        publisher,
		picker:           NewRandomPicker(),
		estimates:        NewEstimateFactory(),
		metrics:          metrics.NewDelivery(),
		operationTimeout: 3 * time.Second,
		simulateP:        DefaultSimulateProbability,
		random:           rand.Float64,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CreateDelivery creates the Pending delivery of an order. It is idempotent per order:
// when the delivery already exists, or a concurrent creator wins, the existing row is
// returned with created=false.
func (s *Service) CreateDelivery(ctx context.Context, in CreateInput) (domain.Delivery, bool, error) {
	orderID, err := validateOrderID(in.OrderID)
	if err != nil {
		return domain.Delivery{}, false, err
	}
	if in.OrderTotal.IsNegative() {
		return domain.Delivery{}, false, fmt.Errorf("negative order total: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	est := s.estimates.Estimate(in.OrderTotal, in.MaxPreparationTime)
	now := s.now()

	var (
		result  domain.Delivery
		created bool
	)
	err = s.store.WithSerializableTx(ctx, func(tx deliverytx.Repository) error {
		existing, err := tx.GetDeliveryByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			result, created = *existing, false
			return nil
		}

		d := &domain.Delivery{
			OrderID:                  orderID,
			Status:                   domain.StatusPending,
			Address:                  strings.TrimSpace(in.Address),
			EstimatedDurationMinutes: est.TotalMinutes,
			PreparationTimeMinutes:   est.PreparationMinutes,
			DeliveryTimeMinutes:      est.DeliveryMinutes,
			EstimatedDeliveryTime:    now.Add(time.Duration(est.TotalMinutes) * time.Minute),
			CreatedAt:                now,
		}
		if err := tx.InsertDelivery(ctx, d); err != nil {
			return err
		}
		result, created = *d, true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrDuplicateRequest) && !errors.Is(err, apperr.ErrTransient) {
			return domain.Delivery{}, false, err
		}
		// a concurrent creator won the race
		winner, rerr := s.store.FindDeliveryByOrderID(ctx, orderID)
		if rerr != nil {
			return domain.Delivery{}, false, errors.Join(err, rerr)
		}
		if winner == nil {
			return domain.Delivery{}, false, err
		}
		result, created = *winner, false
	}

	if created {
		s.logger.Info("delivery created",
			logx.String("event", "delivery_created"),
			logx.String("order_id", orderID),
			logx.Int64("delivery_id", result.ID),
			logx.Int("preparation_minutes", result.PreparationTimeMinutes),
			logx.Int("delivery_minutes", result.DeliveryTimeMinutes),
			logx.Time("estimated_delivery_time", result.EstimatedDeliveryTime),
		)
	}
	return result, created, nil
}

// AssignCourier links an available courier to the delivery.
func (s *Service) AssignCourier(ctx context.Context, deliveryID int64) (domain.AssignResult, []domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.apply(ctx, byID(deliveryID), fixed(lifecycle.Trigger{Kind: lifecycle.TriggerAssign}))
	if err != nil {
		return domain.AssignResult{}, nil, err
	}

	res := domain.AssignResult{
		DeliveryID:            out.delivery.ID,
		OrderID:               out.delivery.OrderID,
		Status:                out.delivery.Status,
		EstimatedDeliveryTime: out.delivery.EstimatedDeliveryTime,
	}
	if out.courier != nil {
		res.CourierID = out.courier.ID
		res.CourierName = out.courier.Name
		res.VehicleType = out.courier.VehicleType
	}

	s.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.String("order_id", res.OrderID),
		logx.Int64("delivery_id", res.DeliveryID),
		logx.Int64("courier_id", res.CourierID),
		logx.String("vehicle", string(res.VehicleType)),
		logx.Time("estimated_delivery_time", res.EstimatedDeliveryTime),
	)
	return res, out.events, nil
}

// UpdateStatus applies an explicit status change. A non-nil requestingCourierID must match
// the assigned courier.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID int64, status domain.DeliveryStatus, requestingCourierID *int64) ([]domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.apply(ctx, byID(deliveryID), fixed(lifecycle.Trigger{
		Kind:      lifecycle.TriggerStatusUpdate,
		Target:    status,
		CourierID: requestingCourierID,
	}))
	if err != nil {
		return nil, err
	}
	return out.events, nil
}

// SimulateProgress nudges a delivery forward for demos: Pending gets a payment, any other
// status is evaluated by the timer with its current phase treated as elapsed with the
// configured probability.
func (s *Service) SimulateProgress(ctx context.Context, deliveryID int64) ([]domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.apply(ctx, byID(deliveryID), func(d domain.Delivery) (domain.Delivery, lifecycle.Trigger) {
		if d.Status == domain.StatusPending {
			return d, lifecycle.Trigger{Kind: lifecycle.TriggerPaymentConfirmed}
		}
		if s.random() < s.simulateP {
			d = backdate(d)
		}
		return d, lifecycle.Trigger{Kind: lifecycle.TriggerTimer}
	})
	if err != nil {
		return nil, err
	}
	return out.events, nil
}

// backdate moves the start of the current phase back by its duration.
func backdate(d domain.Delivery) domain.Delivery {
	start, dur, ok := lifecycle.PhaseDuration(d)
	if !ok || start == nil {
		return d
	}
	shifted := start.Add(-dur)
	switch d.Status {
	case domain.StatusOnTheWay:
		d.DeliveryStartedAt = &shifted
	default:
		d.PreparationStartedAt = &shifted
	}
	return d
}

// Advance evaluates the timer trigger for one delivery.
func (s *Service) Advance(ctx context.Context, deliveryID int64) ([]domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.apply(ctx, byID(deliveryID), fixed(lifecycle.Trigger{Kind: lifecycle.TriggerTimer}))
	if err != nil {
		return nil, err
	}
	return out.events, nil
}

// ConfirmPayment moves the order's delivery out of Pending.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) ([]domain.Event, error) {
	return s.onOrder(ctx, orderID, lifecycle.Trigger{Kind: lifecycle.TriggerPaymentConfirmed})
}

// MarkReadyForDelivery tries to hand the order to a courier.
func (s *Service) MarkReadyForDelivery(ctx context.Context, orderID string) ([]domain.Event, error) {
	return s.onOrder(ctx, orderID, lifecycle.Trigger{Kind: lifecycle.TriggerReadyForDelivery})
}

// CancelByOrderID cancels the order's delivery. Cancelling a finished delivery is a no-op.
func (s *Service) CancelByOrderID(ctx context.Context, orderID, reason string) ([]domain.Event, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reason = strings.TrimSpace(reason)
	out, err := s.apply(ctx, byOrder(orderID), fixed(lifecycle.Trigger{Kind: lifecycle.TriggerCancel}), func(d *domain.Delivery) {
		if reason != "" {
			d.Notes = reason
		}
	})
	if err != nil {
		return nil, err
	}
	return out.events, nil
}

func (s *Service) onOrder(ctx context.Context, orderID string, t lifecycle.Trigger) ([]domain.Event, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.apply(ctx, byOrder(orderID), fixed(t))
	if err != nil {
		return nil, err
	}
	return out.events, nil
}

// Get returns the delivery by id.
func (s *Service) Get(ctx context.Context, deliveryID int64) (domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.store.FindDelivery(ctx, deliveryID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, fmt.Errorf("delivery %d: %w", deliveryID, apperr.ErrNotFound)
	}
	return *d, nil
}

// GetByOrderID returns the delivery of an order.
func (s *Service) GetByOrderID(ctx context.Context, orderID string) (domain.Delivery, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.store.FindDeliveryByOrderID(ctx, orderID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, fmt.Errorf("delivery for order %q: %w", orderID, apperr.ErrNotFound)
	}
	return *d, nil
}

// ListActiveIDs returns ids of deliveries the timer should look at.
func (s *Service) ListActiveIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListActiveIDs(ctx)
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", fmt.Errorf("empty order id: %w", apperr.ErrInvalid)
	}
	return orderID, nil
}
