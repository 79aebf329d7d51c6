// Package mockapi is an in-memory implementation of the upstream REST API.
// It backs local development and the tests of the client, api and web packages.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/validator"
)

// Account is a seeded user with its password.
type Account struct {
	model.User
	Password string

	hash []byte
}

// ParseAccounts parses "username:password:role" entries.
func ParseAccounts(entries []string) ([]Account, error) {
	accounts := make([]Account, 0, len(entries))
	for i, e := range entries {
		parts := strings.Split(strings.TrimSpace(e), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("mockapi: account %d: want username:password:role, got %q", i, e)
		}
		role := model.Role(parts[2])
		if !role.Valid() {
			return nil, fmt.Errorf("mockapi: account %q: unknown role %q", parts[0], parts[2])
		}
		accounts = append(accounts, Account{
			User: model.User{
				ID:       int64(i + 1),
				Username: parts[0],
				Role:     role,
				FullName: parts[0],
			},
			Password: parts[1],
		})
	}
	return accounts, nil
}

type Option func(*Server)

// WithAccounts replaces the seeded accounts. Only a bcrypt hash of each
// password is kept.
func WithAccounts(accounts ...Account) Option {
	return func(s *Server) {
		s.accounts = make(map[string]Account, len(accounts))
		for _, a := range accounts {
			hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
			if err != nil {
				s.logger.Warn().Err(err).Str("username", a.Username).Msg("mockapi: account skipped")
				continue
			}
			a.Password, a.hash = "", hash
			s.accounts[a.Username] = a
		}
	}
}

// WithRotateRefresh makes the refresh endpoint return a new refresh token
// and revoke the old one.
func WithRotateRefresh(rotate bool) Option {
	return func(s *Server) {
		s.rotate = rotate
	}
}

// WithLoginUser controls whether the login response embeds the user.
func WithLoginUser(embed bool) Option {
	return func(s *Server) {
		s.loginUser = embed
	}
}

// WithSeed fills the collections with sample content.
func WithSeed() Option {
	return func(s *Server) {
		s.seed = true
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server is the mock upstream.
type Server struct {
	jwt       *jwt.JWT
	engine    *gin.Engine
	validate  *validator.Validator
	logger    *log.Logger
	rotate    bool
	loginUser bool
	seed      bool

	mu          sync.Mutex
	accounts    map[string]Account
	liveAccess  map[string]struct{}
	liveRefresh map[string]struct{}

	logins    atomic.Int64
	refreshes atomic.Int64

	news       *collection[model.News]
	documents  *collection[model.Document]
	categories *collection[model.DocumentCategory]
	years      *collection[model.EducationYear]
	teachers   *collection[model.Teacher]
}

// New creates the mock upstream. Accounts default to admin/admin and teacher/teacher.
func New(j *jwt.JWT, opts ...Option) *Server {
	s := &Server{
		jwt:         j,
		validate:    validator.Default,
		logger:      log.G,
		loginUser:   true,
		liveAccess:  make(map[string]struct{}),
		liveRefresh: make(map[string]struct{}),
		news:        newCollection(func(v *model.News, id int64) { v.ID = id }),
		documents:   newCollection(func(v *model.Document, id int64) { v.ID = id }),
		categories:  newCollection(func(v *model.DocumentCategory, id int64) { v.ID = id }),
		years:       newCollection(func(v *model.EducationYear, id int64) { v.ID = id }),
		teachers:    newCollection(func(v *model.Teacher, id int64) { v.ID = id }),
	}
	defaults, _ := ParseAccounts([]string{"admin:admin:admin", "teacher:teacher:teacher"})
	WithAccounts(defaults...)(s)
	for _, opt := range opts {
		opt(s)
	}
	if s.seed {
		s.seedContent()
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ExpireAccessTokens invalidates every access token issued so far, so the
// next authenticated call answers 401 until the client refreshes.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.liveAccess)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.liveRefresh)
}

// Logins is the number of successful logins.
func (s *Server) Logins() int64 {
	return s.logins.Load()
}

// Refreshes is the number of refresh requests, successful or not.
func (s *Server) Refreshes() int64 {
	return s.refreshes.Load()
}

// issue signs a token pair and records it as live.
func (s *Server) issue(u model.User, withRefresh bool) (model.TokenPair, error) {
	sub := jwt.Subject{ID: u.ID, Username: u.Username, Role: string(u.Role)}
	access, err := s.jwt.Issue(sub, jwt.KindAccess)
	if err != nil {
		return model.TokenPair{}, err
	}
	pair := model.TokenPair{Access: access}
	if withRefresh {
		if pair.Refresh, err = s.jwt.Issue(sub, jwt.KindRefresh); err != nil {
			return model.TokenPair{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveAccess[pair.Access] = struct{}{}
	if pair.Refresh != "" {
		s.liveRefresh[pair.Refresh] = struct{}{}
	}
	return pair, nil
}

func (s *Server) accountByID(id int64) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func (s *Server) accountByName(name string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[name]
	return a, ok
}

func (s *Server) isLive(token string, kind jwt.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.liveAccess
	if kind == jwt.KindRefresh {
		live = s.liveRefresh
	}
	_, ok := live[token]
	return ok
}

func (s *Server) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.liveRefresh, token)
}
