package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/apperr"
	"food-delivery-Orurh/internal/logx"
)

// withURLParam puts a chi route param on the request the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Error
}

func TestWriteAppError_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("name: %w", apperr.ErrInvalid), http.StatusBadRequest, "invalid input"},
		{fmt.Errorf("courier 2: %w", apperr.ErrUnauthorized), http.StatusForbidden, "courier is not assigned to this delivery"},
		{fmt.Errorf("delivery 1: %w", apperr.ErrNotFound), http.StatusNotFound, "not found"},
		{fmt.Errorf("pending -> delivered: %w", apperr.ErrInvalidState), http.StatusConflict, "transition not allowed"},
		{apperr.ErrNoCapacity, http.StatusConflict, "no available couriers"},
		{apperr.ErrConflict, http.StatusConflict, "already exists"},
		{apperr.ErrTransient, http.StatusServiceUnavailable, "temporarily unavailable, retry"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "temporarily unavailable, retry"},
		{errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			writeAppError(logx.Nop(), rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			require.Equal(t, tt.code, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.Equal(t, tt.msg, decodeError(t, rr))
		})
	}
}

func TestIDFromURL(t *testing.T) {
	t.Parallel()

	for raw, ok := range map[string]bool{"7": true, "0": false, "-1": false, "abc": false, "": false} {
		r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", raw)
		id, err := idFromURL(r, "id")
		if ok {
			require.NoError(t, err, raw)
			require.Equal(t, int64(7), id)
		} else {
			require.Error(t, err, raw)
		}
	}
}

func TestOptionalInt(t *testing.T) {
	t.Parallel()

	v, ok := optionalInt("")
	require.True(t, ok)
	require.Nil(t, v)

	v, ok = optionalInt("5")
	require.True(t, ok)
	require.Equal(t, 5, *v)

	_, ok = optionalInt("-5")
	require.False(t, ok)
	_, ok = optionalInt("x")
	require.False(t, ok)
}
