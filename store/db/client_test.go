package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/eduportal/session"
)

func newSQLite(t *testing.T) *Client {
	t.Helper()
	cfg := &Config{Driver: DriverSQLite}
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "session.db")
	client, err := New(cfg, WithConnectTimeout(time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, 1, cfg.Pool.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Pool.ConnMaxLifetime)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "Asia/Tashkent", cfg.Postgres.TimeZone)
}

func TestDSN(t *testing.T) {
	cfg := &Config{Driver: DriverMySQL}
	require.NoError(t, cfg.ApplyDefaults())
	cfg.MySQL.Password = "secret"

	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "eduportal:secret@tcp(localhost:3306)/eduportal?")
	assert.Contains(t, dsn, "parseTime=true")

	cfg.Driver = DriverPostgres
	dsn, err = cfg.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=localhost port=5432")

	cfg.Driver = "oracle"
	_, err = cfg.DSN()
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewSQLite(t *testing.T) {
	client := newSQLite(t)
	assert.NotNil(t, client.DB())
	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 1, client.Stats().MaxOpenConnections)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newSQLite(t).DB())
	require.NoError(t, err)

	_, err = store.Session("")
	assert.ErrorIs(t, err, ErrEmptySession)

	b, err := store.Session("sid-1")
	require.NoError(t, err)
	other, err := store.Session("sid-2")
	require.NoError(t, err)

	require.NoError(t, b.Save(ctx,
		session.Entry{Key: session.AccessTokenKey, Value: "a1", TTL: time.Minute},
		session.Entry{Key: session.RefreshTokenKey, Value: "r1", TTL: time.Hour},
	))
	require.NoError(t, other.Save(ctx, session.Entry{Key: session.AccessTokenKey, Value: "x"}))

	got, err := b.Load(ctx, session.Keys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{session.AccessTokenKey: "a1", session.RefreshTokenKey: "r1"}, got)

	// upsert
	require.NoError(t, b.Save(ctx, session.Entry{Key: session.AccessTokenKey, Value: "a2", TTL: time.Minute}))
	got, err = b.Load(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a2", got[session.AccessTokenKey])

	require.NoError(t, b.Delete(ctx, session.Keys...))
	got, err = b.Load(ctx, session.Keys...)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = other.Load(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "x", got[session.AccessTokenKey])
}

func TestBackendExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newSQLite(t).DB())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	b, err := store.Session("sid")
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx,
		session.Entry{Key: session.AccessTokenKey, Value: "a1", TTL: time.Minute},
		session.Entry{Key: session.RefreshTokenKey, Value: "r1", TTL: time.Hour},
	))

	now = now.Add(2 * time.Minute)
	got, err := b.Load(ctx, session.Keys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{session.RefreshTokenKey: "r1"}, got)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestManagerOverDB(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newSQLite(t).DB())
	require.NoError(t, err)
	b, err := store.Session("manager")
	require.NoError(t, err)

	m := session.New(b)
	require.NoError(t, m.SaveTokens(ctx, "a1", "r1"))
	assert.False(t, m.IsAuthenticated(ctx))

	refresh, ok := m.RefreshToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, m.Clear(ctx))
	_, ok = m.AccessToken(ctx)
	assert.False(t, ok)
}
