package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/kochabx/eduportal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServerHandlers(t *testing.T) {
	s := NewServer(":0", gin.New(),
		WithMeta(Meta{Name: "bff"}),
		WithSwagOptions(SwagOption{Enabled: true}),
		WithMetricsOptions(MetricsOption{Enabled: true}),
		WithHealthOptions(HealthOption{Enabled: true}),
	)
	assert.Equal(t, "bff", s.Name())

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{}}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthChecks(t *testing.T) {
	s := NewServer(":0", gin.New(), WithHealthOptions(HealthOption{
		Enabled: true,
		Checks: map[string]Check{
			"redis":    func(context.Context) error { return errors.New("connection refused") },
			"upstream": func(context.Context) error { return nil },
		},
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"])
	assert.Equal(t, "ok", body.Checks["upstream"])
}

func TestDisabledHandlers(t *testing.T) {
	s := NewServer(":0", gin.New())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShutdownBeforeRun(t *testing.T) {
	s := NewServer("127.0.0.1:0", http.NewServeMux())
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestResponses(t *testing.T) {
	tests := []struct {
		name   string
		handle func(c *gin.Context)
		status int
		want   string
	}{
		{"success", func(c *gin.Context) { GinJSON(c, gin.H{"id": 1}) }, 200, `{"code":200,"msg":"success","data":{"id":1}}`},
		{"string", func(c *gin.Context) { GinJSONE(c, 400, "bad input") }, 400, `{"code":400,"msg":"bad input"}`},
		{"nil", func(c *gin.Context) { GinJSONE(c, 500, nil) }, 500, `{"code":500,"msg":"operation failed"}`},
		{"error", func(c *gin.Context) {
			GinError(c, kerrors.UnprocessableEntity("validation failed").WithMetadata(map[string]string{"title": "required"}))
		}, 422, `{"code":422,"msg":"validation failed","metadata":{"title":"required"}}`},
		{"foreign error", func(c *gin.Context) { GinError(c, errors.New("boom")) }, 500, `{"code":500,"msg":"boom"}`},
		{"business code", func(c *gin.Context) { GinJSONE(c, 10001, "custom") }, 500, `{"code":10001,"msg":"custom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.handle(c)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}
