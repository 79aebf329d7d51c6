package config

import (
	"net/http"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kochabx/eduportal/core/tag"
	"github.com/kochabx/eduportal/errors"
	"github.com/kochabx/eduportal/validator"
)

// FileLoader loads configuration from a file, with environment overrides
// such as SERVER_ADDR for server.addr.
type FileLoader struct {
	viper    *viper.Viper
	validate *validator.Validator
	name     string
	paths    []string
}

// NewFileLoader creates a new file loader
func NewFileLoader(name string, paths []string, v *viper.Viper, validate *validator.Validator) *FileLoader {
	ext := path.Ext(name)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(strings.TrimSuffix(name, ext))
	v.SetConfigType(strings.TrimPrefix(ext, "."))

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{
		viper:    v,
		validate: validate,
		name:     name,
		paths:    paths,
	}
}

// Load implements Loader
func (l *FileLoader) Load(target any) error {
	// defaults first so keys absent from the file keep them
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Wrap(err, http.StatusInternalServerError, "failed to apply defaults")
	}
	if err := l.viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, http.StatusNotFound, "config file %s not found", l.name)
	}
	bindEnv(l.viper, target)
	if err := l.viper.Unmarshal(target); err != nil {
		return errors.Wrap(err, http.StatusInternalServerError, "config parse error")
	}
	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, http.StatusBadRequest, "config validation failed")
		}
	}
	return nil
}

// Watch implements Loader
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}
