// Package client is the HTTP pipeline every upstream API call goes through.
// It attaches the session's bearer token and, on a 401, refreshes the access
// token once and resubmits the request once.
package client

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/session"
)

const (
	DefaultLoginPath   = "/auth"
	DefaultRefreshPath = "/api/token/refresh/"

	defaultTimeout    = 30 * time.Second
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024
)

// ErrSessionExpired is returned when the session could not be recovered and
// has been cleared. Its cause carries the refresh or retry failure.
var ErrSessionExpired = errors.Unauthorized("session expired")

// Client sends requests on behalf of one session.
type Client struct {
	base        *url.URL
	session     *session.Manager
	http        *http.Client
	refreshHTTP *http.Client
	navigator   Navigator
	loginPath   string
	refreshPath string
	group       *singleflight.Group
	metrics     *Metrics
	logger      *log.Logger
	bufferPool  sync.Pool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for API requests. Refresh calls keep
// their own bare client unless WithRefreshHTTPClient is given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRefreshHTTPClient sets the client used for the token refresh call.
func WithRefreshHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.refreshHTTP = hc
		}
	}
}

// WithNavigator sets where forced logins are sent.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

func WithLoginPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.loginPath = p
		}
	}
}

func WithRefreshPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.refreshPath = p
		}
	}
}

// WithSingleFlightRefresh makes concurrent 401s holding the same refresh
// token share one refresh call. Pass a shared group to coordinate across
// clients; nil allocates a private one.
func WithSingleFlightRefresh(g *singleflight.Group) Option {
	return func(c *Client) {
		if g == nil {
			g = &singleflight.Group{}
		}
		c.group = g
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API at baseURL acting for sess.
func New(baseURL string, sess *session.Manager, opts ...Option) (*Client, error) {
	if sess == nil {
		return nil, errors.Internal("client: session manager is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.BadRequest("client: invalid base url %q", baseURL)
	}

	c := &Client{
		base:        base,
		session:     sess,
		http:        &http.Client{Timeout: defaultTimeout},
		refreshHTTP: &http.Client{Timeout: defaultTimeout},
		navigator:   NopNavigator{},
		loginPath:   DefaultLoginPath,
		refreshPath: DefaultRefreshPath,
		logger:      log.G,
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session the client acts for.
func (c *Client) Session() *session.Manager {
	return c.session
}

// LoginPath is where the navigator is sent when the session is lost.
func (c *Client) LoginPath() string {
	return c.loginPath
}

// URL resolves an API path against the base URL. p is in escaped form, so
// callers escape dynamic segments with url.PathEscape.
func (c *Client) URL(p string, query url.Values) string {
	u := *c.base
	escaped := strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.TrimLeft(p, "/")
	if path, err := url.PathUnescape(escaped); err == nil {
		u.Path, u.RawPath = path, escaped
	} else {
		u.Path, u.RawPath = escaped, ""
	}
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) getBuffer() *bytes.Buffer {
	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (c *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		c.bufferPool.Put(buf)
	}
}
