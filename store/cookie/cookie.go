// Package cookie keeps session values in the browser's cookies. A Backend
// lives for one inbound request: reads see the request's cookies overlaid
// with whatever this request already wrote.
package cookie

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kochabx/eduportal/session"
)

// Config controls the attributes of written cookies.
type Config struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path" default:"/"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"sameSite" default:"lax" validate:"oneof=lax strict none"`
	// Prefix is prepended to every cookie name.
	Prefix string `mapstructure:"prefix"`
}

// SameSiteMode maps SameSite to its net/http value, lax when unset.
func (c Config) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Backend is a session.Backend over one request/response pair.
type Backend struct {
	config Config
	r      *http.Request
	w      http.ResponseWriter
	now    func() time.Time

	mu sync.Mutex
	// nil value marks a deleted key
	pending map[string]*string
}

var _ session.Backend = (*Backend)(nil)

// New binds a backend to r and w.
func New(w http.ResponseWriter, r *http.Request, config Config) *Backend {
	if config.Path == "" {
		config.Path = "/"
	}
	return &Backend{
		config:  config,
		r:       r,
		w:       w,
		now:     time.Now,
		pending: make(map[string]*string),
	}
}

func (b *Backend) name(key string) string {
	return b.config.Prefix + key
}

func (b *Backend) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := b.pending[key]; ok {
			if v != nil {
				out[key] = *v
			}
			continue
		}
		c, err := b.r.Cookie(b.name(key))
		if err != nil {
			continue
		}
		// values this package did not write are ignored
		if v, err := decode(c.Value); err == nil && v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// Save writes one Set-Cookie per entry. A TTL <= 0 makes a browser-session cookie.
func (b *Backend) Save(ctx context.Context, entries ...session.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range entries {
		c := b.cookie(e.Key, encode(e.Value))
		if e.TTL > 0 {
			c.MaxAge = int(e.TTL / time.Second)
			c.Expires = b.now().Add(e.TTL)
		}
		http.SetCookie(b.w, c)
		v := e.Value
		b.pending[e.Key] = &v
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, key := range keys {
		c := b.cookie(key, "")
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(b.w, c)
		b.pending[key] = nil
	}
	return nil
}

func (b *Backend) cookie(key, value string) *http.Cookie {
	return &http.Cookie{
		Name:     b.name(key),
		Value:    value,
		Path:     b.config.Path,
		Domain:   b.config.Domain,
		Secure:   b.config.Secure,
		HttpOnly: true,
		SameSite: b.config.SameSiteMode(),
	}
}

// Cookie values cannot carry quotes or commas, which user JSON does.
func encode(v string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(v))
}

func decode(v string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
