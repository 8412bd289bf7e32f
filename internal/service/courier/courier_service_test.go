package courier

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
)

type mockCourierRepo struct {
	getFn    func(ctx context.Context, id int64) (*domain.Courier, error)
	listFn   func(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	createFn func(ctx context.Context, c *domain.Courier) (int64, error)
}

func (m *mockCourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	return m.getFn(ctx, id)
}

func (m *mockCourierRepo) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	return m.listFn(ctx, limit, offset)
}

func (m *mockCourierRepo) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	return m.createFn(ctx, c)
}

func TestNewService_Timeouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 3 * time.Second},
		{-10 * time.Second, 3 * time.Second},
		{5 * time.Second, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := NewService(&mockCourierRepo{}, tt.in).operationTimeout; got != tt.want {
			t.Fatalf("timeout %v: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestService_Get_Success(t *testing.T) {
	t.Parallel()

	expected := &domain.Courier{ID: 50, Name: "courier", Phone: "+71111111111", VehicleType: domain.VehicleCar}
	repo := &mockCourierRepo{
		getFn: func(ctx context.Context, id int64) (*domain.Courier, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Fatal("expected operation deadline")
			}
			if id != expected.ID {
				t.Fatalf("expected id %d, got %d", expected.ID, id)
			}
			return expected, nil
		},
	}

	got, err := NewService(repo, time.Second).Get(context.Background(), expected.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != expected {
		t.Fatalf("expected %#v, got %#v", expected, got)
	}
}

func TestService_Get_Errors(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("db error")
	tests := []struct {
		name string
		id   int64
		repo func(ctx context.Context, id int64) (*domain.Courier, error)
		want error
	}{
		{"bad id", 0, nil, apperr.ErrInvalid},
		{"missing", 7, func(context.Context, int64) (*domain.Courier, error) { return nil, nil }, apperr.ErrNotFound},
		{"repo error", 7, func(context.Context, int64) (*domain.Courier, error) { return nil, repoErr }, repoErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(&mockCourierRepo{getFn: tt.repo}, time.Second).Get(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_List_PassesPagination(t *testing.T) {
	t.Parallel()

	limit, offset := 10, 20
	repo := &mockCourierRepo{
		listFn: func(_ context.Context, l, o *int) ([]domain.Courier, error) {
			if l == nil || *l != limit || o == nil || *o != offset {
				t.Fatalf("unexpected pagination %v %v", l, o)
			}
			return []domain.Courier{{ID: 1}, {ID: 2}}, nil
		},
	}

	got, err := NewService(repo, time.Second).List(context.Background(), &limit, &offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 couriers, got %d", len(got))
	}
}

func TestService_List_NegativePagination(t *testing.T) {
	t.Parallel()

	neg := -1
	repo := &mockCourierRepo{listFn: func(context.Context, *int, *int) ([]domain.Courier, error) {
		t.Fatal("repo must not be called")
		return nil, nil
	}}
	if _, err := NewService(repo, time.Second).List(context.Background(), &neg, nil); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected Invalid, got %v", err)
	}
}

func TestValidateCreate(t *testing.T) {
	t.Parallel()

	valid := func() *domain.Courier {
		return &domain.Courier{Name: "Artem", Phone: "+70000000000", VehicleType: domain.VehicleScooter, Rating: 4.5}
	}
	tests := []struct {
		name   string
		mutate func(c *domain.Courier) *domain.Courier
		ok     bool
	}{
		{"valid", func(c *domain.Courier) *domain.Courier { return c }, true},
		{"nil", func(*domain.Courier) *domain.Courier { return nil }, false},
		{"blank name", func(c *domain.Courier) *domain.Courier { c.Name = "   "; return c }, false},
		{"bad phone", func(c *domain.Courier) *domain.Courier { c.Phone = "123"; return c }, false},
		{"bad vehicle", func(c *domain.Courier) *domain.Courier { c.VehicleType = "rocket"; return c }, false},
		{"rating above five", func(c *domain.Courier) *domain.Courier { c.Rating = 5.1; return c }, false},
		{"negative rating", func(c *domain.Courier) *domain.Courier { c.Rating = -1; return c }, false},
		{"negative user", func(c *domain.Courier) *domain.Courier { c.UserID = -3; return c }, false},
		{"rating bounds", func(c *domain.Courier) *domain.Courier { c.Rating = 5; return c }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreate(tt.mutate(valid()))
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, apperr.ErrInvalid) {
				t.Fatalf("expected Invalid, got %v", err)
			}
		})
	}
}

func TestService_Create_DefaultsVehicleAndTrimsName(t *testing.T) {
	t.Parallel()

	var stored *domain.Courier
	repo := &mockCourierRepo{
		createFn: func(_ context.Context, c *domain.Courier) (int64, error) {
			stored = c
			return 42, nil
		},
	}

	id, err := NewService(repo, time.Second).Create(context.Background(), &domain.Courier{Name: " Oleg ", Phone: "+79001112233"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if stored.VehicleType != domain.VehicleFoot {
		t.Fatalf("expected default vehicle %q, got %q", domain.VehicleFoot, stored.VehicleType)
	}
	if stored.Name != "Oleg" {
		t.Fatalf("expected trimmed name, got %q", stored.Name)
	}
}

func TestService_Create_Conflict(t *testing.T) {
	t.Parallel()

	repo := &mockCourierRepo{
		createFn: func(context.Context, *domain.Courier) (int64, error) {
			return 0, apperr.ErrConflict
		},
	}
	_, err := NewService(repo, time.Second).Create(context.Background(), &domain.Courier{Name: "Oleg", Phone: "+79001112233"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}
