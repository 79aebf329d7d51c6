// Command eduportal serves the BFF of the education portal.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/kochabx/eduportal/app"
	"github.com/kochabx/eduportal/config"
	"github.com/kochabx/eduportal/locale"
	"github.com/kochabx/eduportal/log"
	transport "github.com/kochabx/eduportal/transport/http"
	"github.com/kochabx/eduportal/transport/http/metrics"
	"github.com/kochabx/eduportal/web"
)

func main() {
	path := pflag.StringP("config", "c", "config.yaml", "configuration file")
	pflag.Parse()

	if err := run(*path); err != nil {
		log.Error().Err(err).Msg("eduportal stopped")
		os.Exit(1)
	}
}

func run(path string) error {
	var s config.Settings
	cfg := config.New(&s, config.WithFile(filepath.Base(path), filepath.Dir(path)), config.WithWatch(true))
	if err := cfg.Load(); err != nil {
		return err
	}

	logger, err := log.FromConfig(s.Log)
	if err != nil {
		return err
	}
	log.SetGlobal(logger)
	gin.SetMode(s.Server.Mode)

	cfg.OnChange(func() {
		if level, err := zerolog.ParseLevel(s.Log.Level); err == nil {
			log.SetGlobalLevel(level)
			log.Info().Str("level", level.String()).Msg("log level reloaded")
		}
	})
	if err := cfg.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watch disabled")
	}

	ctx := context.Background()
	backend, err := openStore(ctx, &s)
	if err != nil {
		return err
	}

	resolverOpts := []locale.Option{locale.WithSupported(s.Locale.Supported...), locale.WithDefault(s.Locale.Default)}
	if len(s.Locale.Exempt) > 0 {
		resolverOpts = append(resolverOpts, locale.WithExempt(s.Locale.Exempt...))
	}
	resolver, err := locale.New(resolverOpts...)
	if err != nil {
		return err
	}

	h, err := web.New(web.Config{
		BaseURL:      s.Upstream.BaseURL,
		LoginPath:    s.Upstream.LoginPath,
		RefreshPath:  s.Upstream.RefreshPath,
		Timeout:      s.Upstream.Timeout,
		SingleFlight: s.Upstream.SingleFlight,
		AccessTTL:    s.Session.AccessTTL,
		RefreshTTL:   s.Session.RefreshTTL,
		CorsOrigins:  s.Server.CorsOrigins,
	}, backend.store,
		web.WithResolver(resolver),
		web.WithRegisterer(metrics.Prom.Registry()),
		web.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := transport.NewServer(s.Server.Addr, h.Router(),
		transport.WithMeta(transport.Meta{Name: "eduportal"}),
		transport.WithMetricsOptions(transport.MetricsOption{
			Enabled:                   s.Metrics.Enabled,
			Path:                      s.Metrics.Path,
			EnabledGoCollector:        true,
			EnabledBuildInfoCollector: true,
		}),
		transport.WithHealthOptions(transport.HealthOption{Enabled: true, Checks: backend.checks}),
		transport.WithSwagOptions(transport.SwagOption{Enabled: s.Server.Swagger}),
		transport.WithTimeoutOptions(transport.TimeoutOption{Read: s.Server.ReadTimeout, Write: s.Server.WriteTimeout}),
	)

	opts := []app.Option{
		app.WithServers(srv),
		app.WithShutdownTimeout(s.Server.ShutdownTimeout),
		app.WithLogger(logger),
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
	}
	opts = append(opts, backend.options...)
	return app.New(opts...).Start()
}
