package app

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"food-delivery-Orurh/internal/logx"
	testlog "food-delivery-Orurh/internal/testutil"
)

func withStubNewPool(t *testing.T, stub func(context.Context, string, int32) (*pgxpool.Pool, error)) {
	t.Helper()
	orig := newPool
	newPool = stub
	t.Cleanup(func() { newPool = orig })
}

func TestConnectDbWithRetry_SuccessFirstAttempt(t *testing.T) {
	wantPool := &pgxpool.Pool{}
	calls := 0

	withStubNewPool(t, func(_ context.Context, _ string, maxConns int32) (*pgxpool.Pool, error) {
		calls++
		require.Equal(t, int32(7), maxConns)
		return wantPool, nil
	})

	pool, err := connectDbWithRetry(context.Background(), logx.Nop(), "postgres://stub", 7, 3, 10*time.Millisecond)
	require.NoError(t, err)
	require.Same(t, wantPool, pool)
	require.Equal(t, 1, calls)
}

func TestConnectDbWithRetry_ExhaustsRetries(t *testing.T) {
	sentinelErr := errors.New("db boom")
	calls := 0
	rec := testlog.New()

	withStubNewPool(t, func(context.Context, string, int32) (*pgxpool.Pool, error) {
		calls++
		return nil, sentinelErr
	})

	pool, err := connectDbWithRetry(context.Background(), rec.Logger(), "postgres://stub", 1, 3, 0)
	require.Error(t, err)
	require.Nil(t, pool)
	require.Equal(t, 3, calls)
	require.ErrorIs(t, err, sentinelErr)
	require.Equal(t, 3, rec.Count("warn", "db connect failed"))
}

func TestConnectDbWithRetry_ContextCanceledBetweenRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	withStubNewPool(t, func(context.Context, string, int32) (*pgxpool.Pool, error) {
		return nil, errors.New("db boom")
	})

	pool, err := connectDbWithRetry(ctx, logx.Nop(), "postgres://stub", 1, 3, 50*time.Millisecond)
	require.Error(t, err)
	require.Nil(t, pool)
	require.ErrorIs(t, err, context.Canceled)
}

type countingPinger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPinger) Ping(context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestWaitReady_ReturnsWhenStoreAnswers(t *testing.T) {
	t.Parallel()

	p := &countingPinger{}
	require.NoError(t, waitReady(context.Background(), p, 10*time.Millisecond, logx.Nop()))
	require.Equal(t, int32(1), p.calls.Load())
}

func TestWaitReady_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec := testlog.New()
	p := &countingPinger{err: errors.New("conn refused")}
	err := waitReady(ctx, p, 0, rec.Logger())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, rec.Has("warn", "store not ready, waiting"))
}

func TestWaitReady_CanceledDuringDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &countingPinger{}
	require.ErrorIs(t, waitReady(ctx, p, time.Hour, logx.Nop()), context.Canceled)
	require.Zero(t, p.calls.Load())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, logx.Nop()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	t.Parallel()

	srv := &http.Server{Addr: "256.0.0.1:bad", ReadHeaderTimeout: time.Second}
	err := serve(context.Background(), srv, logx.Nop())
	require.Error(t, err)
}

func TestIgnoreCanceled(t *testing.T) {
	t.Parallel()

	require.NoError(t, ignoreCanceled(context.Canceled))
	require.NoError(t, ignoreCanceled(nil))
	sentinel := errors.New("boom")
	require.ErrorIs(t, ignoreCanceled(sentinel), sentinel)
}
