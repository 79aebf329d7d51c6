package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/model"
)

type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Load(context.Context, ...string) (map[string]string, error) {
	return nil, errBackendDown
}
func (failingBackend) Save(context.Context, ...Entry) error { return errBackendDown }
func (failingBackend) Delete(context.Context, ...string) error { return errBackendDown }

var teacher = &model.User{ID: 7, Username: "dilnoza", Role: model.RoleTeacher, FullName: "Dilnoza K.", Email: "d@edu.uz"}

func TestSaveTokensRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend())

	require.NoError(t, m.SaveTokens(ctx, "a1", "r1"))

	access, ok := m.AccessToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a1", access)
	refresh, ok := m.RefreshToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "r1", refresh)
}

func TestSaveUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend())

	require.NoError(t, m.SaveUser(ctx, teacher))
	got, ok := m.User(ctx)
	require.True(t, ok)
	assert.Equal(t, teacher, got)

	role, ok := m.UserRole(ctx)
	assert.True(t, ok)
	assert.Equal(t, model.RoleTeacher, role)
}

func TestRemoveTokensClearsEverything(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend())

	require.NoError(t, m.Start(ctx, "a1", "r1", teacher))
	assert.True(t, m.IsAuthenticated(ctx))

	require.NoError(t, m.RemoveTokens(ctx))
	assert.False(t, m.IsAuthenticated(ctx))
	assert.Equal(t, Snapshot{}, m.Snapshot(ctx))
	_, ok := m.UserRole(ctx)
	assert.False(t, ok)
}

func TestIsAuthenticatedNeedsTokenAndUser(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend())

	require.NoError(t, m.SaveTokens(ctx, "a1", "r1"))
	assert.False(t, m.IsAuthenticated(ctx), "token without user")

	require.NoError(t, m.Clear(ctx))
	require.NoError(t, m.SaveUser(ctx, teacher))
	assert.False(t, m.IsAuthenticated(ctx), "user without token")

	require.NoError(t, m.SetAccessToken(ctx, "a2"))
	assert.True(t, m.IsAuthenticated(ctx))
}

func TestCorruptUserReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	m := New(b)

	require.NoError(t, b.Save(ctx, Entry{Key: UserKey, Value: "{not json"}, Entry{Key: AccessTokenKey, Value: "a1"}))

	_, ok := m.User(ctx)
	assert.False(t, ok)
	assert.False(t, m.IsAuthenticated(ctx))
}

func TestReadsDegradeOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	m := New(failingBackend{})

	_, ok := m.AccessToken(ctx)
	assert.False(t, ok)
	_, ok = m.RefreshToken(ctx)
	assert.False(t, ok)
	_, ok = m.User(ctx)
	assert.False(t, ok)
	assert.False(t, m.IsAuthenticated(ctx))

	_, err := m.Get(ctx, AccessTokenKey)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Error(t, m.SaveTokens(ctx, "a", "r"))
	assert.Error(t, m.RemoveTokens(ctx))
}

func TestTokenLifetimes(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }
	m := New(b)

	require.NoError(t, m.Start(ctx, "a1", "r1", teacher))

	now = now.Add(DefaultAccessTTL + time.Minute)
	_, ok := m.AccessToken(ctx)
	assert.False(t, ok, "access token expires first")
	_, ok = m.RefreshToken(ctx)
	assert.True(t, ok)
	_, ok = m.User(ctx)
	assert.True(t, ok)

	now = now.Add(DefaultRefreshTTL)
	assert.Equal(t, Snapshot{}, m.Snapshot(ctx))
}

func TestInvalidLifetimesFallBack(t *testing.T) {
	m := New(NewMemoryBackend(), WithAccessTTL(48*time.Hour), WithRefreshTTL(time.Hour))
	assert.Equal(t, DefaultAccessTTL, m.accessTTL)
	assert.Equal(t, DefaultRefreshTTL, m.refreshTTL)
}

func TestAccessExpiry(t *testing.T) {
	ctx := context.Background()
	m := New(NewMemoryBackend())

	_, ok := m.AccessExpiry(ctx)
	assert.False(t, ok)

	issuer, err := jwt.New(jwt.Config{Secret: "s", AccessTTL: time.Minute})
	require.NoError(t, err)
	token, err := issuer.Issue(jwt.Subject{ID: 1}, jwt.KindAccess)
	require.NoError(t, err)
	require.NoError(t, m.SetAccessToken(ctx, token))

	exp, ok := m.AccessExpiry(ctx)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)
}
