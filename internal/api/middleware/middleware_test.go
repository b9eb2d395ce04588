package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(60, time.Minute, 2)
	now := time.Now()

	assert.True(t, rl.Allow("1.1.1.1", now))
	assert.True(t, rl.Allow("1.1.1.1", now))
	assert.False(t, rl.Allow("1.1.1.1", now))
	assert.True(t, rl.Allow("2.2.2.2", now), "other clients keep their own bucket")

	assert.True(t, rl.Allow("1.1.1.1", now.Add(time.Second)), "one token refills per second")
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute, 1)
	assert.Nil(t, rl)
	assert.True(t, rl.Allow("1.1.1.1", time.Now()))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute, Burst: 1}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/x", "").Code)

	rec := perform(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), common.ErrCodeTooManyRequests)
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	r := gin.New()
	r.Use(d.Handler())
	r.POST("/search", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := perform(r, http.MethodPost, "/search", `{"dish_name":"kung pao"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "kung pao", "body is restored for the handler")

	dup := perform(r, http.MethodPost, "/search", `{"dish_name":"kung pao"}`)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Contains(t, dup.Body.String(), common.ErrCodeDuplicateRequest)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/search", `{"dish_name":"mapo tofu"}`).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/search", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/search", "").Code)
}

func TestDeduplicatorWindow(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Now()

	assert.False(t, d.seen("k", now))
	assert.True(t, d.seen("k", now.Add(500*time.Millisecond)))
	assert.False(t, d.seen("k", now.Add(2*time.Second)))
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(16))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/x", `{"a":"b"}`).Code)

	rec := perform(r, http.MethodPost, "/x", `{"dish_name":"a very long dish name"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_TOO_LARGE")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := perform(r, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), common.ErrCodeInternalError)
}

func TestLoggerRecordsMetrics(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(requestid.New(), Logger(m))
	r.GET("/api/v1/sessions/:id/result", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	perform(r, http.MethodGet, "/api/v1/sessions/abc/result", "")
	perform(r, http.MethodGet, "/api/v1/sessions/def/result", "")

	series, err := testutil.GatherAndCount(m.Registry(), "allergy_checker_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series, "session ids must not become label values")
}

func TestRequestContextCarriesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), RequestContext(time.Second))
	r.GET("/x", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{
			"request_id": common.RequestIDFromContext(c.Request.Context()),
			"deadline":   hasDeadline,
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"request_id":"req-123","deadline":true}`, rec.Body.String())
}
