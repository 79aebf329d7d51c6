package cookie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/session"
)

func TestSaveSetsCookies(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	b := New(w, r, Config{Secure: true, SameSite: "strict"})

	ctx := context.Background()
	require.NoError(t, b.Save(ctx,
		session.Entry{Key: session.AccessTokenKey, Value: "a1", TTL: 24 * time.Hour},
		session.Entry{Key: session.RefreshTokenKey, Value: "r1", TTL: 720 * time.Hour},
	))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	access := cookies[0]
	assert.Equal(t, session.AccessTokenKey, access.Name)
	assert.Equal(t, 86400, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)

	// reads in the same request see the writes
	got, err := b.Load(ctx, session.Keys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{session.AccessTokenKey: "a1", session.RefreshTokenKey: "r1"}, got)
}

func TestRoundTripAcrossRequests(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 3, Username: "t.karimov", Role: model.RoleTeacher, FullName: "Karimov, Tohir"}

	w := httptest.NewRecorder()
	first := session.New(New(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil), Config{}))
	require.NoError(t, first.Start(ctx, "a1", "r1", user))

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	second := session.New(New(httptest.NewRecorder(), r, Config{}))

	assert.True(t, second.IsAuthenticated(ctx))
	got, ok := second.User(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
	role, _ := second.UserRole(ctx)
	assert.Equal(t, model.RoleTeacher, role)
}

func TestDeleteExpiresCookies(t *testing.T) {
	ctx := context.Background()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "eduportal_" + session.AccessTokenKey, Value: encode("a1")})
	w := httptest.NewRecorder()
	b := New(w, r, Config{Prefix: "eduportal_"})

	got, err := b.Load(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", got[session.AccessTokenKey])

	require.NoError(t, b.Delete(ctx, session.Keys...))
	got, err = b.Load(ctx, session.Keys...)
	require.NoError(t, err)
	assert.Empty(t, got)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestForeignValuesIgnored(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.AccessTokenKey, Value: "not*base64"})
	b := New(httptest.NewRecorder(), r, Config{})

	got, err := b.Load(context.Background(), session.AccessTokenKey)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := New(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), Config{})

	assert.ErrorIs(t, b.Save(ctx, session.Entry{Key: "k", Value: "v"}), context.Canceled)
	_, err := b.Load(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
