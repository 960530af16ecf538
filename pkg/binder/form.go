package binder

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedTarget is returned when the bind target is not a
	// pointer to a struct.
	ErrUnsupportedTarget = errors.New("binder: target must be a non-nil struct pointer")

	// ErrParseForm is returned when the request body cannot be parsed.
	ErrParseForm = errors.New("binder: failed to parse form")

	// ErrBindField is returned when a form value cannot be converted to
	// the field's type.
	ErrBindField = errors.New("binder: failed to bind field")
)

const maxMultipartMemory = 10 << 20 // 10MB

// Form returns a binder that populates struct fields from URL-encoded
// or multipart form data. Fields are matched by the `form` tag; fields
// without a tag or tagged "-" are skipped.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if err := parseForm(r); err != nil {
			return errors.Join(ErrParseForm, err)
		}
		return bindValues(r.Form, v)
	}
}

// Query returns a binder that populates struct fields from URL query
// parameters, using the `query` tag.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bind(r.URL.Query(), v, "query")
	}
}

func parseForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

func bindValues(values map[string][]string, v any) error {
	return bind(values, v, "form")
}

func bind(values map[string][]string, v any, tag string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedTarget
	}

	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get(tag)
		if name == "" || name == "-" {
			continue
		}
		// Strip tag options like ",omitempty".
		if idx := strings.IndexByte(name, ','); idx >= 0 {
			name = name[:idx]
		}

		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}

		if err := setField(rv.Field(i), vals); err != nil {
			return fmt.Errorf("%w %q: %v", ErrBindField, name, err)
		}
	}

	return nil
}

func setField(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String {
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, s := range vals {
			out.Index(i).SetString(s)
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		// Checkboxes submit "on" when checked.
		if s == "on" {
			fv.SetBool(true)
			return nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
