package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	require.NotNil(t, metrics)

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.RateLimitRejectionsTotal.WithLabelValues("auth").Inc()

	count, err := testutil.GatherAndCount(registry, "poolguide_login_attempts_total", "poolguide_ratelimit_rejections_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() { NewMetrics(nil) })
}

func TestHTTPMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware(metrics))
	router.HandleFunc("/api/pools/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Pool not found"}`))
	}).Methods(http.MethodGet)

	for _, id := range []string{"1", "2", "3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/pools/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/pools/{id}", "404")))
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := NewRegistry()
	NewMetrics(registry).CacheHitsTotal.WithLabelValues("pool").Inc()

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `poolguide_cache_hits_total{cache_type="pool"} 1`))
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}
