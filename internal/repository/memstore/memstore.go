// Package memstore is an in-memory delivery store for unit and HTTP tests.
// Transactions are serialized by one mutex and rolled back by restoring a snapshot.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/ports/deliverytx"
)

// Store keeps deliveries, couriers and orders in maps.
type Store struct {
	mu sync.Mutex

	deliveries map[int64]domain.Delivery
	byOrder    map[string]int64
	couriers   map[int64]domain.Courier
	orders     map[string]domain.Order

	nextDeliveryID int64
	nextCourierID  int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		deliveries: make(map[int64]domain.Delivery),
		byOrder:    make(map[string]int64),
		couriers:   make(map[int64]domain.Courier),
		orders:     make(map[string]domain.Order),
	}
}

type snapshot struct {
	deliveries     map[int64]domain.Delivery
	byOrder        map[string]int64
	couriers       map[int64]domain.Courier
	nextDeliveryID int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		deliveries:     make(map[int64]domain.Delivery, len(s.deliveries)),
		byOrder:        make(map[string]int64, len(s.byOrder)),
		couriers:       make(map[int64]domain.Courier, len(s.couriers)),
		nextDeliveryID: s.nextDeliveryID,
	}
	for k, v := range s.deliveries {
		snap.deliveries[k] = v
	}
	for k, v := range s.byOrder {
		snap.byOrder[k] = v
	}
	for k, v := range s.couriers {
		snap.couriers[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.deliveries = snap.deliveries
	s.byOrder = snap.byOrder
	s.couriers = snap.couriers
	s.nextDeliveryID = snap.nextDeliveryID
}

// WithTx runs fn holding the store lock and undoes its writes if it fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err := fn(&txRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// WithSerializableTx is WithTx: transactions here are already serial.
func (s *Store) WithSerializableTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	return s.WithTx(ctx, fn)
}

// FindDelivery returns a copy of the delivery, nil if absent.
func (s *Store) FindDelivery(_ context.Context, id int64) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivery(id), nil
}

// FindDeliveryByOrderID returns a copy of the order's delivery, nil if absent.
func (s *Store) FindDeliveryByOrderID(_ context.Context, orderID string) (*domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	return s.delivery(id), nil
}

// ListActiveIDs returns non-terminal delivery ids in ascending order.
func (s *Store) ListActiveIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.deliveries))
	for id, d := range s.deliveries {
		if !d.Status.IsTerminal() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AuditCourierPool mirrors the SQL audit of the postgres repository.
func (s *Store) AuditCourierPool(_ context.Context) (domain.PoolAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[int64]int)
	for _, d := range s.deliveries {
		if d.CourierID != nil && !d.Status.IsTerminal() {
			active[*d.CourierID]++
		}
	}

	var a domain.PoolAudit
	for id, c := range s.couriers {
		n := active[id]
		switch {
		case !c.IsAvailable && n == 0:
			a.Stranded++
		case c.IsAvailable && n > 0:
			a.Leaked++
		}
		if n > 1 {
			a.Overbooked++
		}
	}
	return a, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// AddCourier stores the courier as given and returns its id.
func (s *Store) AddCourier(c domain.Courier) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCourier(c)
}

func (s *Store) addCourier(c domain.Courier) int64 {
	s.nextCourierID++
	c.ID = s.nextCourierID
	s.couriers[c.ID] = c
	return c.ID
}

// Courier returns a copy of the courier, nil if absent.
func (s *Store) Courier(id int64) *domain.Courier {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.couriers[id]
	if !ok {
		return nil
	}
	return &c
}

// Get - courier admin read.
func (s *Store) Get(_ context.Context, id int64) (*domain.Courier, error) {
	return s.Courier(id), nil
}

// List - couriers ordered by id.
func (s *Store) List(_ context.Context, limit, offset *int) ([]domain.Courier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Courier, 0, len(s.couriers))
	for _, c := range s.couriers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset != nil {
		if *offset >= len(out) {
			return []domain.Courier{}, nil
		}
		out = out[*offset:]
	}
	if limit != nil && *limit < len(out) {
		out = out[:*limit]
	}
	return out, nil
}

// Create - courier admin insert with a unique phone.
func (s *Store) Create(_ context.Context, c *domain.Courier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.couriers {
		if existing.Phone == c.Phone {
			return 0, fmt.Errorf("courier phone %s: %w", c.Phone, apperr.ErrConflict)
		}
	}
	nc := *c
	nc.IsAvailable = true
	return s.addCourier(nc), nil
}

// PutOrder stores an order record.
func (s *Store) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// GetOrder returns a copy of the order, nil if absent.
func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// AdvanceOrderStatus sets the order status when it is a forward step.
func (s *Store) AdvanceOrderStatus(_ context.Context, id string, status domain.OrderStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || !o.Status.CanMoveTo(status) {
		return false, nil
	}
	o.Status = status
	o.UpdatedAt = at
	s.orders[id] = o
	return true, nil
}

func (s *Store) delivery(id int64) *domain.Delivery {
	d, ok := s.deliveries[id]
	if !ok {
		return nil
	}
	return clone(d)
}

func clone(d domain.Delivery) *domain.Delivery {
	out := d
	if d.CourierID != nil {
		v := *d.CourierID
		out.CourierID = &v
	}
	if d.PreparationStartedAt != nil {
		v := *d.PreparationStartedAt
		out.PreparationStartedAt = &v
	}
	if d.DeliveryStartedAt != nil {
		v := *d.DeliveryStartedAt
		out.DeliveryStartedAt = &v
	}
	return &out
}

type txRepo struct {
	s *Store
}

func (r *txRepo) GetDelivery(_ context.Context, id int64) (*domain.Delivery, error) {
	return r.s.delivery(id), nil
}

func (r *txRepo) GetDeliveryByOrderID(_ context.Context, orderID string) (*domain.Delivery, error) {
	id, ok := r.s.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	return r.s.delivery(id), nil
}

func (r *txRepo) InsertDelivery(_ context.Context, d *domain.Delivery) error {
	if _, ok := r.s.byOrder[d.OrderID]; ok {
		return fmt.Errorf("insert delivery for order %q: %w", d.OrderID, apperr.ErrDuplicateRequest)
	}
	r.s.nextDeliveryID++
	d.ID = r.s.nextDeliveryID
	d.UpdatedAt = d.CreatedAt
	r.s.deliveries[d.ID] = *clone(*d)
	r.s.byOrder[d.OrderID] = d.ID
	return nil
}

func (r *txRepo) UpdateDelivery(_ context.Context, d *domain.Delivery) error {
	cur, ok := r.s.deliveries[d.ID]
	if !ok {
		return fmt.Errorf("delivery %d: %w", d.ID, apperr.ErrNotFound)
	}
	next := *clone(*d)
	next.OrderID = cur.OrderID
	next.CreatedAt = cur.CreatedAt
	r.s.deliveries[d.ID] = next
	return nil
}

func (r *txRepo) ListAvailableCouriers(_ context.Context) ([]domain.Courier, error) {
	out := make([]domain.Courier, 0)
	for _, c := range r.s.couriers {
		if c.IsAvailable {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *txRepo) AcquireCourier(_ context.Context, id int64) (bool, error) {
	c, ok := r.s.couriers[id]
	if !ok || !c.IsAvailable {
		return false, nil
	}
	c.IsAvailable = false
	r.s.couriers[id] = c
	return true, nil
}

func (r *txRepo) ReleaseCourier(_ context.Context, id int64, completed bool) error {
	c, ok := r.s.couriers[id]
	if !ok {
		return fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	c.IsAvailable = true
	if completed {
		c.CompletedDeliveries++
	}
	r.s.couriers[id] = c
	return nil
}

func (r *txRepo) GetCourier(_ context.Context, id int64) (*domain.Courier, error) {
	c, ok := r.s.couriers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
