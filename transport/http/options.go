package http

import (
	"context"
	"time"

	"github.com/kochabx/eduportal/core/tag"
)

type Options struct {
	Swag    SwagOption
	Metrics MetricsOption
	Health  HealthOption
	Timeout TimeoutOption
}

type SwagOption struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" default:"/swagger/*any"`
}

func (s *SwagOption) init() error {
	return tag.ApplyDefaults(s)
}

type MetricsOption struct {
	Enabled                   bool   `mapstructure:"enabled"`
	Path                      string `mapstructure:"path" default:"/metrics"`
	EnabledGoCollector        bool   `mapstructure:"enabledGoCollector"`
	EnabledBuildInfoCollector bool   `mapstructure:"enabledBuildInfoCollector"`
}

func (m *MetricsOption) init() error {
	return tag.ApplyDefaults(m)
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type HealthOption struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" default:"/health"`
	// Checks run on every probe; any failure answers 503.
	Checks map[string]Check `mapstructure:"-"`
}

func (h *HealthOption) init() error {
	return tag.ApplyDefaults(h)
}

type TimeoutOption struct {
	Read  time.Duration `mapstructure:"read" default:"15s"`
	Write time.Duration `mapstructure:"write" default:"30s"`
	Idle  time.Duration `mapstructure:"idle" default:"60s"`
}

func (t *TimeoutOption) init() error {
	return tag.ApplyDefaults(t)
}
