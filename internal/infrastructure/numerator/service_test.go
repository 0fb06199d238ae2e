package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/entity"
	corenumerator "stockwise/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences for a single key.
type mockQuerier struct {
	mu      sync.Mutex
	current int64
	calls   int
	err     error
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return &mockRow{err: m.err}
	}

	switch {
	case strings.Contains(sql, "current_val = $2"):
		m.current = args[1].(int64)
	case len(args) == 2:
		m.current += args[1].(int64)
	default:
		m.current++
	}
	return &mockRow{val: m.current}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.ConfigFor(entity.RecorderTransfer)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "TR-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "TR-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.ConfigFor(entity.RecorderSale)
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SL-2026-00001", num)
	assert.EqualValues(t, 10, q.current)

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SL-2026-00002", num)
	assert.Equal(t, 1, q.calls, "second number comes from the reserved range")

	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls)

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SL-2026-00011", num)
	assert.EqualValues(t, 20, q.current)
	assert.Equal(t, 2, q.calls)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	q := &mockQuerier{}
	svc := NewWithQuerier(q)
	ctx := context.Background()
	cfg := corenumerator.ConfigFor(entity.RecorderPurchase)
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PU-2026-00101", num)
}

func TestGetNextNumber_Error(t *testing.T) {
	q := &mockQuerier{err: errors.New("connection reset")}
	svc := NewWithQuerier(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.ConfigFor(entity.RecorderDamage), nil, period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
