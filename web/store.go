package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochabx/eduportal/session"
	"github.com/kochabx/eduportal/store/cookie"
)

// SessionStore opens the session backend of one inbound request.
type SessionStore interface {
	Open(c *gin.Context) (session.Backend, error)
}

// CookieStore keeps the whole session in the browser's cookies.
type CookieStore struct {
	Config cookie.Config
}

func (s CookieStore) Open(c *gin.Context) (session.Backend, error) {
	return cookie.New(c.Writer, c.Request, s.Config), nil
}

// IDStore keeps the session server side under an id carried in an HTTP-only cookie.
type IDStore struct {
	cookieName string
	config     cookie.Config
	ttl        time.Duration
	open       func(id string) (session.Backend, error)
}

// NewIDStore creates a store whose sessions are opened by open. The id
// cookie lives for ttl.
func NewIDStore(cookieName string, config cookie.Config, ttl time.Duration, open func(id string) (session.Backend, error)) *IDStore {
	if config.Path == "" {
		config.Path = "/"
	}
	return &IDStore{cookieName: config.Prefix + cookieName, config: config, ttl: ttl, open: open}
}

// Open reuses the id of the request or issues a new one. Ids that are not
// UUIDs are replaced, so callers never choose their own key space.
func (s *IDStore) Open(c *gin.Context) (session.Backend, error) {
	id, err := c.Cookie(s.cookieName)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     s.config.Path,
			Domain:   s.config.Domain,
			MaxAge:   int(s.ttl.Seconds()),
			Secure:   s.config.Secure,
			HttpOnly: true,
			SameSite: s.config.SameSiteMode(),
		})
	}
	return s.open(id)
}

// NewMemoryStore keeps sessions in process memory, for development and tests.
// Entries expire on read but ids are never evicted.
func NewMemoryStore(cookieName string, config cookie.Config, ttl time.Duration) *IDStore {
	var (
		mu       sync.Mutex
		sessions = make(map[string]*session.MemoryBackend)
	)
	return NewIDStore(cookieName, config, ttl, func(id string) (session.Backend, error) {
		mu.Lock()
		defer mu.Unlock()
		b, ok := sessions[id]
		if !ok {
			b = session.NewMemoryBackend()
			sessions[id] = b
		}
		return b, nil
	})
}
