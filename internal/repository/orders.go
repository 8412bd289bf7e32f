package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"food-delivery-Orurh/internal/domain"
)

// OrderRepo is the order service's table of orders.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// GetOrder - returns the order or nil when it does not exist.
func (r *OrderRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRow(ctx, `SELECT id, status, updated_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Status, &o.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, classify(fmt.Sprintf("get order %q", id), err)
	}
	return &o, nil
}

// AdvanceOrderStatus - moves the order to status only from one of its predecessors, so a late
// event never overwrites a newer status. Returns false when nothing was updated.
func (r *OrderRepo) AdvanceOrderStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (bool, error) {
	from := domain.OrderPredecessors(status)
	if len(from) == 0 {
		return false, nil
	}
	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}

	ct, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)`,
		id, string(status), at, allowed)
	if err != nil {
		return false, classify(fmt.Sprintf("advance order %q", id), err)
	}
	return ct.RowsAffected() == 1, nil
}
