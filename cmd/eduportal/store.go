package main

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/kochabx/eduportal/app"
	"github.com/kochabx/eduportal/config"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/session"
	"github.com/kochabx/eduportal/store/db"
	"github.com/kochabx/eduportal/store/redis"
	transport "github.com/kochabx/eduportal/transport/http"
	"github.com/kochabx/eduportal/web"
)

const purgeSpec = "@every 10m"

// sessionBackend is the configured session store with what the process
// must check and release for it.
type sessionBackend struct {
	store   web.SessionStore
	checks  map[string]transport.Check
	options []app.Option
}

func openStore(ctx context.Context, s *config.Settings) (*sessionBackend, error) {
	sc := s.Session
	b := &sessionBackend{checks: map[string]transport.Check{}}

	switch sc.Backend {
	case "memory":
		b.store = web.NewMemoryStore(sc.IDCookie, sc.Cookie, sc.RefreshTTL)

	case "redis":
		rc, err := redis.New(ctx, &s.Redis, redis.WithTracing(), redis.WithLogger(log.G))
		if err != nil {
			return nil, err
		}
		rs := redis.NewStore(rc)
		b.store = web.NewIDStore(sc.IDCookie, sc.Cookie, sc.RefreshTTL, func(id string) (session.Backend, error) {
			backend, err := rs.Session(id)
			if err != nil {
				return nil, err
			}
			return backend, nil
		})
		b.checks["redis"] = rc.Ping
		b.options = append(b.options, app.WithClose("redis", func(context.Context) error { return rc.Close() }, 0))

	case "db":
		dc, err := db.New(&s.DB, db.WithLogger(log.G))
		if err != nil {
			return nil, err
		}
		ds, err := db.NewStore(ctx, dc.DB())
		if err != nil {
			_ = dc.Close()
			return nil, err
		}
		b.store = web.NewIDStore(sc.IDCookie, sc.Cookie, sc.RefreshTTL, func(id string) (session.Backend, error) {
			backend, err := ds.Session(id)
			if err != nil {
				return nil, err
			}
			return backend, nil
		})
		b.checks["db"] = dc.Ping
		b.options = append(b.options,
			app.WithTask("session-purge", func(ctx context.Context) error { return purge(ctx, ds) }),
			app.WithClose("db", func(context.Context) error { return dc.Close() }, 0),
		)

	default:
		b.store = web.CookieStore{Config: sc.Cookie}
	}
	log.Info().Str("backend", sc.Backend).Msg("session store ready")
	return b, nil
}

// purge removes expired session values on purgeSpec until ctx ends.
func purge(ctx context.Context, ds *db.Store) error {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Descriptor)))
	if _, err := c.AddFunc(purgeSpec, func() {
		n, err := ds.PurgeExpired(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("session purge failed")
			return
		}
		if n > 0 {
			log.Debug().Int64("rows", n).Msg("expired session values purged")
		}
	}); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
