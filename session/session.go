// Package session holds the client credentials (access token, refresh token,
// cached user) for one browser context on top of a pluggable Backend.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/model"
)

const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Keys lists every key a session owns.
var Keys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.NotFound("session value not found")

// Snapshot is the session read in a single backend round trip.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// Authenticated reports whether both an access token and a user are present.
func (s Snapshot) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

// Manager reads and writes the session fields. Read accessors never fail:
// backend and decoding errors are logged and reported as absent.
type Manager struct {
	backend    Backend
	accessTTL  time.Duration
	refreshTTL time.Duration
	userTTL    time.Duration
	logger     *log.Logger
}

type Option func(*Manager)

// WithAccessTTL sets the access token lifetime. Must stay below the refresh lifetime.
func WithAccessTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.accessTTL = d
		}
	}
}

// WithRefreshTTL sets the refresh token and cached user lifetime.
func WithRefreshTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTTL = d
			m.userTTL = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:    backend,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		userTTL:    DefaultRefreshTTL,
		logger:     log.G,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.accessTTL >= m.refreshTTL {
		m.logger.Warn().
			Dur("access_ttl", m.accessTTL).
			Dur("refresh_ttl", m.refreshTTL).
			Msg("access ttl not shorter than refresh ttl, using defaults")
		m.accessTTL, m.refreshTTL, m.userTTL = DefaultAccessTTL, DefaultRefreshTTL, DefaultRefreshTTL
	}
	return m
}

// Backend returns the underlying storage.
func (m *Manager) Backend() Backend {
	return m.backend
}

// Start writes a freshly issued session in one backend batch.
func (m *Manager) Start(ctx context.Context, access, refresh string, user *model.User) error {
	entries := []Entry{
		{Key: AccessTokenKey, Value: access, TTL: m.accessTTL},
		{Key: RefreshTokenKey, Value: refresh, TTL: m.refreshTTL},
	}
	if user != nil {
		e, err := m.userEntry(user)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := m.backend.Save(ctx, entries...); err != nil {
		return errors.Wrap(err, 500, "failed to start session")
	}
	return nil
}

// SaveTokens stores both tokens with their own lifetimes.
func (m *Manager) SaveTokens(ctx context.Context, access, refresh string) error {
	err := m.backend.Save(ctx,
		Entry{Key: AccessTokenKey, Value: access, TTL: m.accessTTL},
		Entry{Key: RefreshTokenKey, Value: refresh, TTL: m.refreshTTL},
	)
	if err != nil {
		return errors.Wrap(err, 500, "failed to save tokens")
	}
	return nil
}

// SetAccessToken replaces only the access token, leaving the refresh token untouched.
func (m *Manager) SetAccessToken(ctx context.Context, access string) error {
	if err := m.backend.Save(ctx, Entry{Key: AccessTokenKey, Value: access, TTL: m.accessTTL}); err != nil {
		return errors.Wrap(err, 500, "failed to save access token")
	}
	return nil
}

func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	v, err := m.Get(ctx, AccessTokenKey)
	return v, err == nil
}

func (m *Manager) RefreshToken(ctx context.Context) (string, bool) {
	v, err := m.Get(ctx, RefreshTokenKey)
	return v, err == nil
}

// Get returns a single raw value or ErrNotFound.
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	values, err := m.backend.Load(ctx, key)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("session read failed")
		return "", ErrNotFound.WithCause(err)
	}
	v, ok := values[key]
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// RemoveTokens deletes the access token, refresh token and cached user in one call.
func (m *Manager) RemoveTokens(ctx context.Context) error {
	if err := m.backend.Delete(ctx, Keys...); err != nil {
		return errors.Wrap(err, 500, "failed to clear session")
	}
	m.logger.Debug().Msg("session cleared")
	return nil
}

// Clear is an alias of RemoveTokens.
func (m *Manager) Clear(ctx context.Context) error {
	return m.RemoveTokens(ctx)
}

func (m *Manager) SaveUser(ctx context.Context, u *model.User) error {
	if u == nil {
		return errors.BadRequest("user is nil")
	}
	e, err := m.userEntry(u)
	if err != nil {
		return err
	}
	if err := m.backend.Save(ctx, e); err != nil {
		return errors.Wrap(err, 500, "failed to save user")
	}
	return nil
}

// User returns the cached user. Corrupt data reads as absent.
func (m *Manager) User(ctx context.Context) (*model.User, bool) {
	raw, err := m.Get(ctx, UserKey)
	if err != nil {
		return nil, false
	}
	return m.decodeUser(raw)
}

func (m *Manager) UserRole(ctx context.Context) (model.Role, bool) {
	u, ok := m.User(ctx)
	if !ok || u.Role == "" {
		return "", false
	}
	return u.Role, true
}

// IsAuthenticated checks presence only; token validity is left to the server.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.Snapshot(ctx).Authenticated()
}

// Snapshot loads all fields at once.
func (m *Manager) Snapshot(ctx context.Context) Snapshot {
	values, err := m.backend.Load(ctx, Keys...)
	if err != nil {
		m.logger.Warn().Err(err).Msg("session read failed")
		return Snapshot{}
	}
	s := Snapshot{
		AccessToken:  values[AccessTokenKey],
		RefreshToken: values[RefreshTokenKey],
	}
	if raw := values[UserKey]; raw != "" {
		s.User, _ = m.decodeUser(raw)
	}
	return s
}

// AccessExpiry reads the exp claim of the stored access token without
// verifying it. Diagnostics only.
func (m *Manager) AccessExpiry(ctx context.Context) (time.Time, bool) {
	token, ok := m.AccessToken(ctx)
	if !ok {
		return time.Time{}, false
	}
	exp, err := jwt.ExpiresAt(token)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}

func (m *Manager) userEntry(u *model.User) (Entry, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return Entry{}, errors.Wrap(err, 500, "failed to encode user")
	}
	return Entry{Key: UserKey, Value: string(data), TTL: m.userTTL}, nil
}

func (m *Manager) decodeUser(raw string) (*model.User, bool) {
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.logger.Warn().Err(err).Msg("cached user is corrupt, treating as absent")
		return nil, false
	}
	return &u, true
}
