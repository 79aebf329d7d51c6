package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kochabx/eduportal/core/tag"
)

// Kind 区分 access 与 refresh token
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims 签发的 token 载荷
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Kind     Kind   `json:"kind"`
}

// UserID 从 sub 解析用户 ID
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Subject 签发对象
type Subject struct {
	ID       int64
	Username string
	Role     string
}

// Pair access 与 refresh token 对
type Pair struct {
	Access  string
	Refresh string
}

// JWT HMAC token 签发与校验
type JWT struct {
	config Config
	now    func() time.Time
}

// New 创建 JWT 实例
func New(config Config) (*JWT, error) {
	if err := tag.ApplyDefaults(&config); err != nil {
		return nil, err
	}
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}
	return &JWT{config: config, now: time.Now}, nil
}

// Config 返回生效的配置
func (j *JWT) Config() Config {
	return j.config
}

// Issue 签发单个 token
func (j *JWT) Issue(sub Subject, kind Kind) (string, error) {
	ttl := j.config.AccessTTL
	if kind == KindRefresh {
		ttl = j.config.RefreshTTL
	}
	now := j.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(sub.ID, 10),
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: sub.Username,
		Role:     sub.Role,
		Kind:     kind,
	}
	return jwt.NewWithClaims(j.config.method(), claims).SignedString([]byte(j.config.Secret))
}

// IssuePair 同时签发 access 与 refresh token
func (j *JWT) IssuePair(sub Subject) (Pair, error) {
	access, err := j.Issue(sub, KindAccess)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := j.Issue(sub, KindRefresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse 校验签名、有效期与类型
func (j *JWT) Parse(token string, kind Kind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != j.config.method().Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(j.config.Secret), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithIssuer(j.config.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}
