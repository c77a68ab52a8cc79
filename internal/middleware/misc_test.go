package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/recipes", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, true, "info")

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/tags", func(c *gin.Context) {
		assert.Equal(t, "req-42", logging.RequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"path":"/tags"`)
	assert.Contains(t, out, `"status":200`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tags", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/recipes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/recipes/1", "/recipes/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP foodgram_http_requests_total Total number of HTTP requests by route, method and status
# TYPE foodgram_http_requests_total counter
foodgram_http_requests_total{method="GET",route="/recipes/:id",status="200"} 2
foodgram_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "foodgram_http_requests_total"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logging.NewWithWriter(&bytes.Buffer{}, true, "error")))
	r.POST("/recipes", BodyLimit(32), func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"name":"Tea"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	big := `{"name":"` + strings.Repeat("x", 64) + `"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"request_too_large"`)
}
