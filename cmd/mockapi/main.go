// Command mockapi runs an in-memory stand-in for the education REST API.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/kochabx/eduportal/app"
	"github.com/kochabx/eduportal/config"
	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/mockapi"
	transport "github.com/kochabx/eduportal/transport/http"
)

func main() {
	path := pflag.StringP("config", "c", "config.yaml", "configuration file")
	rotate := pflag.Bool("rotate", false, "issue a new refresh token on every refresh")
	empty := pflag.Bool("empty", false, "start without seed content")
	pflag.Parse()

	var s config.Settings
	if err := config.New(&s, config.WithFile(filepath.Base(*path), filepath.Dir(*path)), config.WithWatch(false)).Load(); err != nil {
		log.Error().Err(err).Msg("load config")
		os.Exit(1)
	}
	logger, err := log.FromConfig(s.Log)
	if err != nil {
		log.Error().Err(err).Msg("init logger")
		os.Exit(1)
	}
	log.SetGlobal(logger)
	gin.SetMode(s.Server.Mode)

	j, err := jwt.New(s.Mock.JWT)
	if err != nil {
		log.Fatal().Err(err).Msg("init jwt")
	}
	accounts, err := mockapi.ParseAccounts(s.Mock.Users)
	if err != nil {
		log.Fatal().Err(err).Msg("parse users")
	}

	opts := []mockapi.Option{
		mockapi.WithLogger(logger),
		mockapi.WithAccounts(accounts...),
		mockapi.WithRotateRefresh(s.Mock.RotateRefresh || *rotate),
	}
	if !*empty {
		opts = append(opts, mockapi.WithSeed())
	}
	srv := transport.NewServer(s.Mock.Addr, mockapi.New(j, opts...).Handler(),
		transport.WithMeta(transport.Meta{Name: "mockapi"}),
		transport.WithHealthOptions(transport.HealthOption{Enabled: true}),
	)

	err = app.New(
		app.WithServers(srv),
		app.WithLogger(logger),
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
	).Start()
	if err != nil {
		log.Fatal().Err(err).Msg("mockapi stopped")
	}
}
