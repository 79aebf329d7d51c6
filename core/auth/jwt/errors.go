package jwt

import "errors"

var (
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrExpiredToken  = errors.New("jwt: token expired")
	ErrWrongKind     = errors.New("jwt: unexpected token kind")
	ErrEmptySecret   = errors.New("jwt: secret cannot be empty")
	ErrNoExpiryClaim = errors.New("jwt: token has no exp claim")
)
