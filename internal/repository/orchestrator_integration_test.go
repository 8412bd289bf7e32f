//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
	"food-delivery-Orurh/internal/repository"
	"food-delivery-Orurh/internal/service/delivery"
)

// OrchestratorSuite runs the delivery service against postgres to exercise the
// SERIALIZABLE create and the SKIP LOCKED courier acquisition under real concurrency.
type OrchestratorSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	svc      *delivery.Service
	couriers *repository.CourierRepo
}

func (s *OrchestratorSuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")

	s.pool = tcPool
	s.svc = delivery.NewDeliveryService(repository.NewDeliveryRepo(tcPool), nil, logx.Nop())
	s.couriers = repository.NewCourierRepo(tcPool)
}

func (s *OrchestratorSuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), s.pool))
}

func createInput(orderID string) delivery.CreateInput {
	return delivery.CreateInput{
		OrderID:            orderID,
		Address:            "Main st. 1",
		OrderTotal:         decimal.NewFromInt(1500),
		MaxPreparationTime: 15,
	}
}

// createWithRedelivery retries transient failures the way a requeued event would.
func (s *OrchestratorSuite) createWithRedelivery(ctx context.Context, orderID string) (domain.Delivery, bool, error) {
	var (
		d       domain.Delivery
		created bool
		err     error
	)
	for range 5 {
		d, created, err = s.svc.CreateDelivery(ctx, createInput(orderID))
		if !errors.Is(err, apperr.ErrTransient) {
			break
		}
	}
	return d, created, err
}

func (s *OrchestratorSuite) TestConcurrentCreateConverges() {
	ctx := context.Background()
	const workers = 8

	type result struct {
		id      int64
		created bool
		err     error
	}
	results := make([]result, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			d, created, err := s.createWithRedelivery(ctx, "order-race")
			results[i] = result{id: d.ID, created: created, err: err}
		}()
	}
	close(start)
	wg.Wait()

	createdCount := 0
	for _, r := range results {
		s.Require().NoError(r.err)
		s.Equal(results[0].id, r.id)
		if r.created {
			createdCount++
		}
	}
	s.Equal(1, createdCount)

	var rows int64
	s.Require().NoError(s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE order_id = $1`, "order-race").Scan(&rows))
	s.Equal(int64(1), rows)
}

func (s *OrchestratorSuite) TestConcurrentAssignOnPoolOfOne() {
	ctx := context.Background()

	courierID, err := s.couriers.Create(ctx, &domain.Courier{
		Name:        "Solo",
		Phone:       "+70000000009",
		VehicleType: domain.VehicleCar,
		Rating:      4.9,
	})
	s.Require().NoError(err)

	var ids []int64
	for _, orderID := range []string{"order-a", "order-b"} {
		d, created, err := s.svc.CreateDelivery(ctx, createInput(orderID))
		s.Require().NoError(err)
		s.Require().True(created)
		ids = append(ids, d.ID)
	}

	errs := make([]error, len(ids))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _, errs[i] = s.svc.AssignCourier(ctx, id)
		}()
	}
	close(start)
	wg.Wait()

	var ok, noCapacity int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrNoCapacity):
			noCapacity++
		default:
			s.Failf("unexpected assign error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, noCapacity)

	c, err := s.couriers.Get(ctx, courierID)
	s.Require().NoError(err)
	s.False(c.IsAvailable)

	var linked int64
	s.Require().NoError(s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE courier_id = $1`, courierID).Scan(&linked))
	s.Equal(int64(1), linked)
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}
