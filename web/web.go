// Package web is the backend-for-frontend: it serves locale routed page data
// and the back office, calling the upstream API on behalf of each browser.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/kochabx/eduportal/api"
	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/locale"
	"github.com/kochabx/eduportal/log"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/session"
	transport "github.com/kochabx/eduportal/transport/http"
	"github.com/kochabx/eduportal/validator"
)

const scopeKey = "eduportal.scope"

var errBadID = errors.NotFound("resource not found")

// Config is what the BFF needs to reach the upstream API.
type Config struct {
	BaseURL      string
	LoginPath    string
	RefreshPath  string
	Timeout      time.Duration
	SingleFlight bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	CorsOrigins  []string
}

type Option func(*Handler)

func WithResolver(r *locale.Resolver) Option {
	return func(h *Handler) {
		if r != nil {
			h.resolver = r
		}
	}
}

// WithRegisterer enables request and client metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(h *Handler) {
		h.registerer = reg
	}
}

// WithHTTPClient sets the transport used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(h *Handler) {
		h.httpClient = hc
	}
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handler builds the BFF routes. Shared state lives here, everything bound to
// a browser is created per request.
type Handler struct {
	config     Config
	store      SessionStore
	resolver   *locale.Resolver
	registerer prometheus.Registerer
	httpClient *http.Client
	validate   *validator.Validator
	logger     *log.Logger

	clientOpts  []client.Option
	sessionOpts []session.Option
}

// scope is the per-request state: the browser's session and an API bound to it.
type scope struct {
	session   *session.Manager
	api       *api.API
	navigator *client.RecordingNavigator
}

// New creates the handler. The upstream base URL is checked eagerly.
func New(config Config, store SessionStore, opts ...Option) (*Handler, error) {
	if store == nil {
		return nil, errors.Internal("web: session store is required")
	}
	if config.LoginPath == "" {
		config.LoginPath = client.DefaultLoginPath
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	h := &Handler{
		config:   config,
		store:    store,
		resolver: locale.MustNew(),
		validate: validator.Default,
		logger:   log.G,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient == nil {
		h.httpClient = &http.Client{Timeout: config.Timeout}
	}

	h.clientOpts = []client.Option{
		client.WithHTTPClient(h.httpClient),
		client.WithLoginPath(config.LoginPath),
		client.WithRefreshPath(config.RefreshPath),
		client.WithLogger(h.logger),
	}
	if config.SingleFlight {
		h.clientOpts = append(h.clientOpts, client.WithSingleFlightRefresh(&singleflight.Group{}))
	}
	if h.registerer != nil {
		m, err := client.NewMetrics(h.registerer)
		if err != nil {
			return nil, err
		}
		h.clientOpts = append(h.clientOpts, client.WithMetrics(m))
	}
	h.sessionOpts = []session.Option{
		session.WithAccessTTL(config.AccessTTL),
		session.WithRefreshTTL(config.RefreshTTL),
		session.WithLogger(h.logger),
	}

	// fail fast on a bad base url instead of on the first request
	if _, err := client.New(config.BaseURL, session.New(session.NewMemoryBackend())); err != nil {
		return nil, err
	}
	return h, nil
}

// bind opens the browser's session and the API client for this request.
// Requests outside locale routing get a locale negotiated from Accept-Language
// so validation messages are still localized.
func (h *Handler) bind(c *gin.Context) {
	backend, err := h.store.Open(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("open session backend")
		transport.GinError(c, errors.Wrap(err, http.StatusServiceUnavailable, "session storage unavailable"))
		return
	}
	if _, ok := locale.FromContext(c.Request.Context()); !ok {
		lang := h.resolver.Negotiate(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(locale.NewContext(c.Request.Context(), lang))
	}

	sess := session.New(backend, h.sessionOpts...)
	nav := &client.RecordingNavigator{}
	opts := append(h.clientOpts[:len(h.clientOpts):len(h.clientOpts)], client.WithNavigator(nav))
	cl, err := client.New(h.config.BaseURL, sess, opts...)
	if err != nil {
		transport.GinError(c, err)
		return
	}
	c.Set(scopeKey, &scope{
		session:   sess,
		api:       api.New(cl, api.WithLogger(h.logger), api.WithValidator(h.validate)),
		navigator: nav,
	})
	c.Next()
}

func scopeOf(c *gin.Context) *scope {
	return c.MustGet(scopeKey).(*scope)
}

func (h *Handler) sessionOf(c *gin.Context) *session.Manager {
	v, ok := c.Get(scopeKey)
	if !ok {
		return nil
	}
	return v.(*scope).session
}

// Router assembles the middleware chain and every route.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	// "/news" must reach the locale redirect instead of a trailing slash redirect
	r.RedirectTrailingSlash = false
	r.Use(middleware.Recovery(), middleware.Logger(middleware.LoggerConfig{
		Logger:        h.logger,
		SlowThreshold: time.Second,
		SkipPaths:     []string{"/health", "/metrics"},
	}))
	if len(h.config.CorsOrigins) > 0 {
		cfg := middleware.DefaultCorsConfig()
		cfg.AllowOrigins = h.config.CorsOrigins
		r.Use(middleware.Cors(cfg))
	}
	if h.registerer != nil {
		r.Use(middleware.Metrics(middleware.MetricsConfig{
			Registerer: h.registerer,
			SkipPaths:  []string{"/health", "/metrics", "/swagger/**", "/static/**"},
		}))
	}
	r.Use(middleware.Locale(h.resolver))

	h.publicRoutes(r)
	h.authRoutes(r)
	h.adminRoutes(r)
	return r
}

// fail answers with err, or with a redirect when the client gave up on the session.
func (h *Handler) fail(c *gin.Context, err error) {
	if v, ok := c.Get(scopeKey); ok {
		if target, lost := v.(*scope).navigator.Target(); lost {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
	}
	if errors.Code(err) >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	transport.GinError(c, err)
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// upload opens an optional multipart file; the returned func closes it.
func upload(c *gin.Context, field string) (*api.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, errors.Wrap(err, http.StatusBadRequest, "cannot read uploaded file")
	}
	return &api.Upload{Name: fh.Filename, Content: f}, func() { _ = f.Close() }, nil
}

// bindQuery decodes and validates query parameters in the request locale.
func (h *Handler) bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return errors.Wrap(err, http.StatusBadRequest, "invalid query")
	}
	lang, _ := locale.FromContext(c.Request.Context())
	if err := h.validate.StructLang(c.Request.Context(), lang, dst); err != nil {
		return validator.ToError(err)
	}
	return nil
}

// bindBody decodes a JSON or form body. Validation is left to the api services.
func bindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		return errors.Wrap(err, http.StatusBadRequest, "invalid request body")
	}
	return nil
}
