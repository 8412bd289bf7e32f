package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/ports/deliverytx"
)

const deliveryColumns = `id, order_id, status, courier_id, address,
        estimated_duration_minutes, preparation_time_minutes, delivery_time_minutes,
        estimated_delivery_time, preparation_started_at, delivery_started_at,
        notes, created_at, updated_at`

const activeFilter = `status NOT IN ('delivered', 'cancelled')`

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a READ COMMITTED transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// WithSerializableTx opens a SERIALIZABLE transaction and executes fn within it.
func (r *DeliveryRepo) WithSerializableTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func (r *DeliveryRepo) run(ctx context.Context, opts pgx.TxOptions, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return classify("begin tx", err)
	}

	// отменяем в случае паники
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(fmt.Sprintf("%v (rollback: %v)", p, rbErr))
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit tx", err)
	}
	return nil
}

// FindDelivery returns the delivery without locking it, nil if absent.
func (r *DeliveryRepo) FindDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("find delivery %d", id), err)
	}
	return d, nil
}

// FindDeliveryByOrderID returns the delivery of an order without locking it, nil if absent.
func (r *DeliveryRepo) FindDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("find delivery by order %q", orderID), err)
	}
	return d, nil
}

// ListActiveIDs returns ids of all non-terminal deliveries, oldest first.
func (r *DeliveryRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM deliveries WHERE `+activeFilter+` ORDER BY id`)
	if err != nil {
		return nil, classify("list active deliveries", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, classify("scan active deliveries", err)
	}
	return ids, nil
}

// AuditCourierPool counts couriers whose availability flag disagrees with active deliveries.
func (r *DeliveryRepo) AuditCourierPool(ctx context.Context) (domain.PoolAudit, error) {
	var a domain.PoolAudit
	err := r.db.QueryRow(ctx, `
        WITH active AS (
            SELECT courier_id, COUNT(*) AS n
            FROM deliveries
            WHERE courier_id IS NOT NULL AND `+activeFilter+`
            GROUP BY courier_id
        )
        SELECT
            (SELECT COUNT(*) FROM couriers c
              WHERE NOT c.is_available AND NOT EXISTS (SELECT 1 FROM active a WHERE a.courier_id = c.id)),
            (SELECT COUNT(*) FROM active WHERE n > 1),
            (SELECT COUNT(*) FROM couriers c JOIN active a ON a.courier_id = c.id WHERE c.is_available)
    `).Scan(&a.Stranded, &a.Overbooked, &a.Leaked)
	if err != nil {
		return domain.PoolAudit{}, classify("audit courier pool", err)
	}
	return a, nil
}

// Ping checks that the database answers.
func (r *DeliveryRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetDelivery - get delivery by ID and lock it.
func (r *TxRepo) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("get delivery %d", id), err)
	}
	return d, nil
}

// GetDeliveryByOrderID - get delivery by order ID and lock it.
func (r *TxRepo) GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1 FOR UPDATE`, orderID)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, classify(fmt.Sprintf("get delivery by order %q", orderID), err)
	}
	return d, nil
}

// InsertDelivery - insert a new delivery.
func (r *TxRepo) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO deliveries (order_id, status, courier_id, address,
            estimated_duration_minutes, preparation_time_minutes, delivery_time_minutes,
            estimated_delivery_time, preparation_started_at, delivery_started_at, notes,
            created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
        RETURNING id
    `, d.OrderID, d.Status, d.CourierID, d.Address,
		d.EstimatedDurationMinutes, d.PreparationTimeMinutes, d.DeliveryTimeMinutes,
		d.EstimatedDeliveryTime, d.PreparationStartedAt, d.DeliveryStartedAt, d.Notes,
		d.CreatedAt).Scan(&d.ID)
	if err != nil {
		return classify(fmt.Sprintf("insert delivery for order %q", d.OrderID), err)
	}
	d.UpdatedAt = d.CreatedAt
	return nil
}

// UpdateDelivery - persist the mutable part of a delivery.
func (r *TxRepo) UpdateDelivery(ctx context.Context, d *domain.Delivery) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET status = $2,
            courier_id = $3,
            preparation_started_at = $4,
            delivery_started_at = $5,
            estimated_delivery_time = $6,
            notes = $7,
            updated_at = $8
        WHERE id = $1
    `, d.ID, d.Status, d.CourierID, d.PreparationStartedAt, d.DeliveryStartedAt,
		d.EstimatedDeliveryTime, d.Notes, d.UpdatedAt)
	if err != nil {
		return classify(fmt.Sprintf("update delivery %d", d.ID), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d: %w", d.ID, apperr.ErrNotFound)
	}
	return nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID, &d.OrderID, &d.Status, &d.CourierID, &d.Address,
		&d.EstimatedDurationMinutes, &d.PreparationTimeMinutes, &d.DeliveryTimeMinutes,
		&d.EstimatedDeliveryTime, &d.PreparationStartedAt, &d.DeliveryStartedAt,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
