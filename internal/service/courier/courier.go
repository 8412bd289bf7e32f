// Package courier is the admin surface of the courier pool: seeding and reading couriers.
// Availability is never edited here; it belongs to the delivery orchestrator.
package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
)

const (
	defaultTimeout = 3 * time.Second
	maxRating      = 5.0
)

// Service coordinates courier admin logic and repository calls.
type Service struct {
	repo             courierRepository
	operationTimeout time.Duration
}

// NewService creates and configures a courier Service.
func NewService(r courierRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// validateCreate normalizes and validates a courier for creation.
func validateCreate(c *domain.Courier) error {
	if c == nil {
		return fmt.Errorf("empty courier: %w", apperr.ErrInvalid)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("empty name: %w", apperr.ErrInvalid)
	}
	if !domain.ValidatePhone(c.Phone) {
		return fmt.Errorf("phone %q: %w", c.Phone, apperr.ErrInvalid)
	}
	if c.VehicleType == "" {
		c.VehicleType = domain.VehicleFoot
	}
	if !c.VehicleType.Valid() {
		return fmt.Errorf("vehicle type %q: %w", c.VehicleType, apperr.ErrInvalid)
	}
	if c.Rating < 0 || c.Rating > maxRating {
		return fmt.Errorf("rating %.2f out of [0, 5]: %w", c.Rating, apperr.ErrInvalid)
	}
	if c.UserID < 0 {
		return fmt.Errorf("user id %d: %w", c.UserID, apperr.ErrInvalid)
	}
	return nil
}

// Get retrieves a courier by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	if id <= 0 {
		return nil, fmt.Errorf("courier id %d: %w", id, apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

// List returns couriers with optional pagination
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	if (limit != nil && *limit < 0) || (offset != nil && *offset < 0) {
		return nil, fmt.Errorf("negative pagination: %w", apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, limit, offset)
}

// Create persists a new available courier and returns its generated ID.
func (s *Service) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	if err := validateCreate(c); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Create(ctx, c)
}
