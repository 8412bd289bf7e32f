package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/logx"
)

type stubCourierUsecase struct {
	getFn    func(ctx context.Context, id int64) (*domain.Courier, error)
	listFn   func(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	createFn func(ctx context.Context, c *domain.Courier) (int64, error)
}

func (s *stubCourierUsecase) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	return s.getFn(ctx, id)
}

func (s *stubCourierUsecase) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *stubCourierUsecase) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	return s.createFn(ctx, c)
}

func TestCourierHandler_GetByID_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		getFn: func(_ context.Context, id int64) (*domain.Courier, error) {
			require.Equal(t, int64(99), id)
			return &domain.Courier{ID: 99, Name: "Artem", Phone: "+70000000000", VehicleType: domain.VehicleCar, IsAvailable: true}, nil
		},
	}
	h := NewCourierHandler(logx.Nop(), uc)

	rr := httptest.NewRecorder()
	h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/99", nil), "id", "99"))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp courierDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, int64(99), resp.ID)
	require.Equal(t, "Artem", resp.Name)
	require.Equal(t, domain.VehicleCar, resp.VehicleType)
	require.True(t, resp.IsAvailable)
}

func TestCourierHandler_GetByID_Errors(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		getFn: func(_ context.Context, id int64) (*domain.Courier, error) {
			return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
		},
	}
	h := NewCourierHandler(logx.Nop(), uc)

	rr := httptest.NewRecorder()
	h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/x", nil), "id", "x"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid id", decodeError(t, rr))

	rr = httptest.NewRecorder()
	h.GetByID(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/5", nil), "id", "5"))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCourierHandler_List(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		listFn: func(_ context.Context, limit, offset *int) ([]domain.Courier, error) {
			require.Equal(t, 2, *limit)
			require.Nil(t, offset)
			return []domain.Courier{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil
		},
	}
	h := NewCourierHandler(logx.Nop(), uc)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/couriers?limit=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []courierDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 2)
	require.Equal(t, "B", resp[1].Name)
}

func TestCourierHandler_List_BadPagination(t *testing.T) {
	t.Parallel()

	h := NewCourierHandler(logx.Nop(), &stubCourierUsecase{})

	for _, q := range []string{"limit=-1", "offset=abc"} {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/couriers?"+q, nil))
		require.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestCourierHandler_Create(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		createFn: func(_ context.Context, c *domain.Courier) (int64, error) {
			require.Equal(t, "Ivan", c.Name)
			require.Equal(t, domain.VehicleBicycle, c.VehicleType)
			return 12, nil
		},
	}
	h := NewCourierHandler(logx.Nop(), uc)

	body := `{"name":"Ivan","phone":"+79990000000","vehicle_type":"bicycle"}`
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/couriers", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/couriers/12", rr.Header().Get("Location"))
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, int64(12), resp["id"])
}

func TestCourierHandler_Create_BadBody(t *testing.T) {
	t.Parallel()

	h := NewCourierHandler(logx.Nop(), &stubCourierUsecase{})

	tests := map[string]string{
		`{"name":`:                         "invalid json",
		`{"nickname":"x"}`:                 "invalid json",
		`{"name":"a","phone":"1"} {"a":1}`: "invalid json: trailing data",
	}
	for body, msg := range tests {
		rr := httptest.NewRecorder()
		h.Create(rr, httptest.NewRequest(http.MethodPost, "/couriers", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.Equal(t, msg, decodeError(t, rr))
	}
}

func TestCourierHandler_Create_Conflict(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		createFn: func(context.Context, *domain.Courier) (int64, error) {
			return 0, fmt.Errorf("courier phone: %w", apperr.ErrConflict)
		},
	}
	h := NewCourierHandler(logx.Nop(), uc)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/couriers", strings.NewReader(`{"name":"Ivan","phone":"+79990000000"}`)))
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "already exists", decodeError(t, rr))
}
