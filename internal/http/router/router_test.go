package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/domain"
	"food-delivery-Orurh/internal/http/handlers"
	"food-delivery-Orurh/internal/http/middleware"
	"food-delivery-Orurh/internal/http/router"
	"food-delivery-Orurh/internal/metrics"
	"food-delivery-Orurh/internal/repository/memstore"
	"food-delivery-Orurh/internal/service/courier"
	"food-delivery-Orurh/internal/service/delivery"
	testlog "food-delivery-Orurh/internal/testutil"
)

type fixture struct {
	srv      *httptest.Server
	delivery *delivery.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := testlog.New().Logger()
	store := memstore.New()
	dsvc := delivery.NewDeliveryService(store, nil, logger)
	csvc := courier.NewService(store, 0)

	reg := prometheus.NewRegistry()
	httpm := metrics.NewHTTP()
	reg.MustRegister(httpm.Collectors()...)

	h := router.New(
		handlers.New(logger, store),
		handlers.NewCourierHandler(logger, handlers.NewCourierUsecase(csvc)),
		handlers.NewDeliveryHandler(logger, handlers.NewDeliveryUsecase(dsvc)),
		middleware.Observability(logger, httpm),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return fixture{srv: srv, delivery: dsvc}
}

func (f fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_BaseRoutes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Content-Type"))

	resp = f.do(t, http.MethodHead, "/healthcheck", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_CourierAndDeliveryFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/couriers", `{"name":"Ivan","phone":"+79990000001","vehicle_type":"bicycle"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "/couriers/1", resp.Header.Get("Location"))

	resp = f.do(t, http.MethodGet, "/couriers/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/couriers?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)

	d, created, err := f.delivery.CreateDelivery(context.Background(), delivery.CreateInput{
		OrderID:            "ord-1",
		Address:            "Lenina 1",
		OrderTotal:         decimal.NewFromInt(800),
		MaxPreparationTime: 15,
	})
	require.NoError(t, err)
	require.True(t, created)

	resp = f.do(t, http.MethodGet, "/deliveries/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/deliveries/1/assign", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var assigned struct {
		CourierID int64                 `json:"courier_id"`
		Status    domain.DeliveryStatus `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&assigned))
	require.Equal(t, int64(1), assigned.CourierID)
	require.Equal(t, domain.StatusAssigned, assigned.Status)

	// второй курьер не может трогать чужую доставку
	resp = f.do(t, http.MethodPost, "/deliveries/1/status", `{"status":"picking_up","courier_id":2}`)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/deliveries/1/status", `{"status":"picking_up","courier_id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := f.delivery.Get(context.Background(), d.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPickingUp, got.Status)

	resp = f.do(t, http.MethodPost, "/deliveries/1/assign", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/deliveries/42", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
