package db

import "errors"

var (
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
	ErrInvalidConfig     = errors.New("db: invalid config")
	ErrNotInitialized    = errors.New("db: not initialized")
	ErrEmptySession      = errors.New("db: session id cannot be empty")
)
