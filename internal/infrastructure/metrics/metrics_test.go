package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RequestStarted()
		m.RecordRequest("GET", "/health", 200, time.Millisecond)
		m.RecordSearch("found", "catalog")
		m.RecordLookup("found", time.Second)
		m.SetAdapterStatus("ready", "ready", "error")
		m.SetSessions(3)
	})
	assert.Nil(t, m.Registry())
}

func TestRecordSearchAndLookup(t *testing.T) {
	m := New()

	m.RecordSearch("found", "catalog")
	m.RecordSearch("found", "catalog")
	m.RecordSearch("not-found", "none")
	m.RecordLookup("quota-exceeded", 2*time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.searches.WithLabelValues("found", "catalog")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.searches.WithLabelValues("not-found", "none")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.lookups.WithLabelValues("quota-exceeded")))
}

func TestSetAdapterStatusIsExclusive(t *testing.T) {
	m := New()
	all := []string{"ready", "error", "quota-exceeded"}

	m.SetAdapterStatus("ready", all...)
	m.SetAdapterStatus("error", all...)

	assert.Equal(t, float64(0), testutil.ToFloat64(m.adapterStatus.WithLabelValues("ready")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.adapterStatus.WithLabelValues("error")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.adapterStatus.WithLabelValues("quota-exceeded")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.RequestStarted()
	m.RecordRequest("GET", "/api/v1/allergens", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "allergy_checker_http_requests_total")
}
