// Package tag fills zero-valued struct fields from `default:"..."` struct tags.
package tag

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTargetMustBePointer = errors.New("target must be a non-nil pointer to a struct")
	ErrUnsupportedType     = errors.New("unsupported type")
)

const tagName = "default"

var durationType = reflect.TypeFor[time.Duration]()

// ApplyDefaults sets every zero-valued field of the struct pointed to by target
// to the value of its `default` tag. Nested structs and pointers to structs are
// walked; slices take comma separated values and maps take "k:v,k:v".
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrTargetMustBePointer
	}
	return applyStruct(v.Elem(), "")
}

func applyStruct(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		switch {
		case fv.Kind() == reflect.Struct && fv.Type() != reflect.TypeFor[time.Time]():
			if err := applyStruct(fv, path); err != nil {
				return err
			}
			continue
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			if err := applyStruct(fv.Elem(), path); err != nil {
				return err
			}
			continue
		case fv.Kind() == reflect.Slice && fv.Len() > 0:
			for j := range fv.Len() {
				if elem := fv.Index(j); elem.Kind() == reflect.Struct {
					if err := applyStruct(elem, fmt.Sprintf("%s[%d]", path, j)); err != nil {
						return err
					}
				}
			}
			continue
		}

		def, ok := field.Tag.Lookup(tagName)
		if !ok || !fv.IsZero() {
			continue
		}
		if err := setValue(fv, def); err != nil {
			return fmt.Errorf("field %s: default %q: %w", path, def, err)
		}
	}
	return nil
}

func setValue(v reflect.Value, s string) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(s))
		}
	}

	switch v.Kind() {
	case reflect.Slice:
		if s = strings.TrimSpace(s); s == "" {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
			return nil
		}
		parts := strings.Split(s, ",")
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setScalar(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return err
			}
		}
		v.Set(slice)
		return nil
	case reflect.Map:
		m := reflect.MakeMap(v.Type())
		for pair := range strings.SplitSeq(s, ",") {
			k, val, found := strings.Cut(pair, ":")
			if !found {
				continue
			}
			key := reflect.New(v.Type().Key()).Elem()
			elem := reflect.New(v.Type().Elem()).Elem()
			if err := setScalar(key, strings.TrimSpace(k)); err != nil {
				return err
			}
			if err := setScalar(elem, strings.TrimSpace(val)); err != nil {
				return err
			}
			m.SetMapIndex(key, elem)
		}
		v.Set(m)
		return nil
	default:
		return setScalar(v, s)
	}
}

func setScalar(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(s)
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return ErrUnsupportedType
	}
	return nil
}
