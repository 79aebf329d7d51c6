package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(401, "unauthorized access")
	assert.Equal(t, 401, err.Code)
	assert.Equal(t, "unauthorized access", err.Message)
	assert.Equal(t, "code=401, message=unauthorized access", err.Error())
}

func TestWithMetadata(t *testing.T) {
	err := New(422, "validation failed")

	assert.Same(t, err, err.WithMetadata(nil))

	withMeta := err.WithMetadata(map[string]string{"title": "required"})
	assert.NotSame(t, err, withMeta)
	assert.Empty(t, err.Metadata)
	assert.Equal(t, "required", withMeta.Metadata["title"])
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, http.StatusBadGateway, "upstream request failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause=connection refused")
	assert.Nil(t, Wrap(nil, 500, "ignored"))
}

func TestIsComparesCodeAndMessage(t *testing.T) {
	sentinel := Unauthorized("session expired")
	wrapped := Unauthorized("session expired").WithCause(errors.New("refresh rejected"))

	assert.True(t, Is(wrapped, sentinel))
	assert.False(t, Is(Unauthorized("authorization required"), sentinel))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	std := FromError(errors.New("boom"))
	assert.Equal(t, UnknownCode, std.Code)

	existing := NotFound("not found")
	assert.Same(t, existing, FromError(existing))

	joined := Join(errors.New("other"), existing)
	assert.Equal(t, 404, Code(joined))
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		code     int
		message  string
		metadata map[string]string
	}{
		{name: "unauthorized", status: 401, body: `{"detail":"token expired"}`, code: 401, message: "authorization required"},
		{name: "forbidden", status: 403, code: 403, message: "access denied"},
		{name: "not found", status: 404, body: `<html>`, code: 404, message: "resource not found"},
		{
			name:     "validation",
			status:   422,
			body:     `{"errors":{"title":["too long","required"]}}`,
			code:     422,
			message:  "validation failed",
			metadata: map[string]string{"title": "required; too long"},
		},
		{name: "422 without field errors", status: 422, body: `{"message":"bad year"}`, code: 422, message: "bad year"},
		{name: "message", status: 409, body: `{"message":"slug taken"}`, code: 409, message: "slug taken"},
		{name: "detail", status: 400, body: `{"detail":"bad page"}`, code: 400, message: "bad page"},
		{name: "generic", status: 500, body: ``, code: 500, message: defaultUpstreamMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			if tt.metadata != nil {
				assert.Equal(t, tt.metadata, err.Metadata)
			}
		})
	}
}

func BenchmarkErrorString(b *testing.B) {
	err := New(500, "internal server error").
		WithMetadata(map[string]string{"service": "api"}).
		WithCause(errors.New("database error"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = err.Error()
	}
}
