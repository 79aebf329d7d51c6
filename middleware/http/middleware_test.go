package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/eduportal/locale"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPathMatcher(t *testing.T) {
	pm := NewPathMatcher([]string{"/health", "/api/**", "/static/*.css"})
	tests := map[string]bool{
		"/health":        true,
		"/health/x":      false,
		"/api":           true,
		"/api/v1/about/": true,
		"/apis":          false,
		"/static/a.css":  true,
		"/static/a.js":   false,
		"/uz/news":       false,
	}
	for p, want := range tests {
		assert.Equal(t, want, pm.Match(p), p)
	}
	var nilMatcher *PathMatcher
	assert.False(t, nilMatcher.Match("/health"))
}

func TestLocale(t *testing.T) {
	r := gin.New()
	r.Use(Locale(locale.MustNew()))
	r.GET("/:lang/news", func(c *gin.Context) {
		loc, _ := CurrentLocale(c)
		v, _ := c.Get(LocaleKey)
		c.String(http.StatusOK, loc+"|"+v.(string))
	})
	r.GET("/api/ping", func(c *gin.Context) {
		_, ok := CurrentLocale(c)
		assert.False(t, ok)
		c.String(http.StatusOK, "pong")
	})

	w := serve(r, http.MethodGet, "/ru/news", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ru|ru", w.Body.String())

	w = serve(r, http.MethodGet, "/news?page=2", map[string]string{"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.8"})
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/ru/news?page=2", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/", map[string]string{"Accept-Language": "de-DE"})
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/en/", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func guarded(t *testing.T, m *session.Manager, roles ...model.Role) *gin.Engine {
	t.Helper()
	r := gin.New()
	fn := func(*gin.Context) *session.Manager { return m }
	r.Use(RequireRole(fn, roles...))
	r.GET("/admin/news", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/admin/news", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRequireSession(t *testing.T) {
	ctx := context.Background()
	anonymous := session.New(session.NewMemoryBackend())

	w := serve(guarded(t, anonymous, model.RoleAdmin), http.MethodGet, "/admin/news", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth", w.Header().Get("Location"))

	w = serve(guarded(t, anonymous, model.RoleAdmin), http.MethodPost, "/admin/news", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login required")

	teacher := session.New(session.NewMemoryBackend())
	require.NoError(t, teacher.Start(ctx, "a", "r", &model.User{ID: 2, Username: "t", Role: model.RoleTeacher}))

	w = serve(guarded(t, teacher, model.RoleAdmin), http.MethodGet, "/admin/news", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = serve(guarded(t, teacher, model.RoleAdmin), http.MethodPost, "/admin/news", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(guarded(t, teacher), http.MethodGet, "/admin/news", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	admin := session.New(session.NewMemoryBackend())
	require.NoError(t, admin.Start(ctx, "a", "r", &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}))
	w = serve(guarded(t, admin, model.RoleAdmin, model.RoleTeacher), http.MethodGet, "/admin/news", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractors(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
		ok     bool
	}{
		{"bearer", "Bearer abc", "", "abc", true},
		{"lowercase scheme", "bearer abc", "", "abc", true},
		{"basic", "Basic abc", "", "", false},
		{"empty token", "Bearer ", "", "", false},
		{"query fallback", "", "token=q1", "q1", true},
		{"nothing", "", "", "", false},
	}
	extract := ChainExtractor(BearerExtractor(), QueryExtractor("token"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			token, err := extract(c)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrTokenMissing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

type claims struct {
	UserID int64
}

func TestAuth(t *testing.T) {
	authn := AuthenticatorFunc[*claims](func(_ context.Context, token string) (*claims, error) {
		if token != "good" {
			return nil, errors.New("signature is invalid")
		}
		return &claims{UserID: 7}, nil
	})

	newRouter := func(optional bool) *gin.Engine {
		r := gin.New()
		r.Use(Auth(AuthConfig[*claims]{Authenticator: authn, Optional: optional, SkipPaths: []string{"/health"}}))
		h := func(c *gin.Context) {
			cl, ok := GetClaims[*claims](c.Request.Context())
			if !ok {
				c.String(http.StatusOK, "anonymous")
				return
			}
			c.JSON(http.StatusOK, gin.H{"uid": cl.UserID})
		}
		r.GET("/me", h)
		r.GET("/health", h)
		return r
	}

	r := newRouter(false)
	w := serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":7}`, w.Body.String())

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token not valid")

	w = serve(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/health", nil)
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve(newRouter(true), http.MethodGet, "/me", nil)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestGetClaimsMismatch(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("claims"), "not claims")
	_, ok := GetClaims[*claims](ctx)
	assert.False(t, ok)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/panic", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal server error"}`, w.Body.String())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(LoggerConfig{Logger: log.NewWriter(&buf), SkipPaths: []string{"/health"}}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/profile", func(c *gin.Context) { c.Redirect(http.StatusFound, "/auth") })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	serve(r, http.MethodGet, "/health", nil)
	assert.Zero(t, buf.Len())

	serve(r, http.MethodGet, "/profile?tab=docs", nil)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"location":"/auth"`)
	assert.Contains(t, buf.String(), `"query":"tab=docs"`)

	buf.Reset()
	serve(r, http.MethodGet, "/boom", nil)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"status":502`)
}

func TestCors(t *testing.T) {
	r := gin.New()
	r.Use(Cors(CorsConfig{
		AllowOrigins:     []string{"*.edu.uz"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}))
	r.GET("/uz/news", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(r, http.MethodOptions, "/uz/news", map[string]string{
		"Origin":                        "https://portal.edu.uz",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.edu.uz", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	w = serve(r, http.MethodGet, "/uz/news", map[string]string{"Origin": "https://portal.edu.uz"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://portal.edu.uz", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))

	w = serve(r, http.MethodGet, "/uz/news", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(Metrics(MetricsConfig{Registerer: reg, SkipPaths: []string{"/metrics"}}))
	r.GET("/:lang/news", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	serve(r, http.MethodGet, "/uz/news", nil)
	serve(r, http.MethodGet, "/ru/news", nil)
	serve(r, http.MethodGet, "/missing/a/b", nil)

	n, err := testutil.GatherAndCount(reg, "eduportal_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
