package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/location"
)

func TestMetrics_Oversold(t *testing.T) {
	m := New()

	m.ObserveOversold(location.KindShop, 5)
	m.ObserveOversold(location.KindShop, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OversoldTotal.WithLabelValues("shop")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.OversoldShortfall.WithLabelValues("shop")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OversoldTotal.WithLabelValues("warehouse")))
}

func TestMetrics_GuardsAndReconcile(t *testing.T) {
	m := New()

	m.GuardAccepted("create_sale")
	m.GuardRejected("create_sale", "INSUFFICIENT_STOCK")
	m.PartialFailure("create_damage")
	m.ObserveDrift("balance", 4)
	m.ObserveDrift("balance", 1)
	m.RecordReconcileRun(nil)
	m.RecordReconcileRun(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("create_sale", "accepted", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("create_sale", "rejected", "INSUFFICIENT_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartialFailures.WithLabelValues("create_damage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DriftDetected.WithLabelValues("balance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileRuns.WithLabelValues("error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveOversold(location.KindWarehouse, 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockwise_oversold_total{location_type="warehouse"} 1`)
}
