package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/validator"
)

// Config manages application configuration
type Config struct {
	mu       sync.RWMutex
	viper    *viper.Viper
	validate *validator.Validator
	// target is where the configuration is unmarshalled
	target   any
	loader   Loader
	watch    bool
	onChange []func()
}

// New creates a Config for target. Without WithLoader it reads config.yaml
// from the working directory.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Default,
		target:   target,
		watch:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewFileLoader("config.yaml", []string{"."}, c.viper, c.validate)
	}
	return c
}

// Load reads the configuration using the configured loader
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Reload loads again and runs the change callbacks on success
func (c *Config) Reload() error {
	if err := c.Load(); err != nil {
		return err
	}
	c.mu.RLock()
	callbacks := append([]func(){}, c.onChange...)
	c.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// OnChange registers fn to run after every successful reload
func (c *Config) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Watch reloads on file changes. It is a no-op when watching is disabled.
func (c *Config) Watch() error {
	if !c.watch {
		return nil
	}
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")
		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}
		log.Info().Msg("config reloaded successfully")
	})
}

// Viper returns the underlying viper instance
func (c *Config) Viper() *viper.Viper {
	return c.viper
}
