package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// bindEnv registers every mapstructure key of target with viper. AutomaticEnv
// alone only overrides keys that already appear in the file.
func bindEnv(v *viper.Viper, target any) {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for _, key := range keys(t, "") {
		_ = v.BindEnv(key)
	}
}

func keys(t reflect.Type, prefix string) []string {
	var out []string
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		// durations and other named scalars are leaves
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			out = append(out, keys(ft, key)...)
			continue
		}
		out = append(out, key)
	}
	return out
}
