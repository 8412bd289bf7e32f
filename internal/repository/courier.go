package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
)

const courierColumns = `id, user_id, name, phone, vehicle_type, is_available, rating, completed_deliveries`

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

// Get - returns courier by its ID.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx, `SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return c, nil
}

// List returns couriers ordered by id. If limit/offset are nil, returns the full list.
func (r *CourierRepo) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	q := `SELECT ` + courierColumns + ` FROM couriers ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list couriers: %w", err)
	}
	return collectCouriers(rows)
}

// Create - creates a new courier.
func (r *CourierRepo) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO couriers (user_id, name, phone, vehicle_type, is_available, rating)
        VALUES ($1, $2, $3, $4, TRUE, $5)
        RETURNING id
    `, c.UserID, c.Name, c.Phone, c.VehicleType, c.Rating).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, fmt.Errorf("courier phone %s: %w", c.Phone, apperr.ErrConflict)
		}
		return 0, fmt.Errorf("create courier: %w", err)
	}
	return id, nil
}

// ListAvailableCouriers - available couriers, skipping rows locked by concurrent assignments.
func (r *TxRepo) ListAvailableCouriers(ctx context.Context) ([]domain.Courier, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT `+courierColumns+`
        FROM couriers
        WHERE is_available
        ORDER BY id
        FOR UPDATE SKIP LOCKED
    `)
	if err != nil {
		return nil, classify("list available couriers", err)
	}
	out, err := collectCouriers(rows)
	if err != nil {
		return nil, classify("scan available couriers", err)
	}
	return out, nil
}

// AcquireCourier - compare-and-swap on the availability flag.
func (r *TxRepo) AcquireCourier(ctx context.Context, id int64) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET is_available = FALSE, updated_at = now()
        WHERE id = $1 AND is_available
    `, id)
	if err != nil {
		return false, classify(fmt.Sprintf("acquire courier %d", id), err)
	}
	return ct.RowsAffected() == 1, nil
}

// ReleaseCourier - return the courier to the pool.
func (r *TxRepo) ReleaseCourier(ctx context.Context, id int64, completed bool) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET is_available = TRUE,
            completed_deliveries = completed_deliveries + CASE WHEN $2 THEN 1 ELSE 0 END,
            updated_at = now()
        WHERE id = $1
    `, id, completed)
	if err != nil {
		return classify(fmt.Sprintf("release courier %d", id), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetCourier - courier by ID inside the transaction.
func (r *TxRepo) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.tx.QueryRow(ctx, `SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		return nil, classify(fmt.Sprintf("get courier %d", id), err)
	}
	return c, nil
}

func scanCourier(row pgx.Row) (*domain.Courier, error) {
	var c domain.Courier
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.VehicleType, &c.IsAvailable, &c.Rating, &c.CompletedDeliveries)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func collectCouriers(rows pgx.Rows) ([]domain.Courier, error) {
	defer rows.Close()
	out := make([]domain.Courier, 0)
	for rows.Next() {
		var c domain.Courier
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.VehicleType, &c.IsAvailable, &c.Rating, &c.CompletedDeliveries); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
