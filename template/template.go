// Package template resolves "{{name}}" placeholders of request paths and payloads.
package template

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var placeholder = regexp.MustCompile(`{{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*}}`)

// Data provides values of placeholders.
type Data interface {
	Lookup(name string) (string, bool)
}

// DataFunc is an adaptor to allow the use of ordinary functions as Data.
type DataFunc func(name string) (string, bool)

// Lookup implements Data interface.
func (f DataFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// ExecuteString replaces the placeholders of s.
// It fails if a placeholder has no value or an empty value.
func ExecuteString(s string, data Data) (string, error) {
	var err error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if err != nil {
			return m
		}
		name := strings.TrimSpace(m[2 : len(m)-2])
		v, ok := data.Lookup(name)
		if !ok || v == "" {
			err = errors.Errorf("%s is not set", name)
			return m
		}
		return v
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to execute template %q", s)
	}
	return out, nil
}

// Execute returns a copy of v whose strings have their placeholders replaced.
// Maps and slices are walked recursively; other values are returned as is.
func Execute(v any, data Data) (any, error) {
	switch vv := v.(type) {
	case string:
		return ExecuteString(vv, data)
	case map[string]any:
		m := make(map[string]any, len(vv))
		for k, e := range vv {
			x, err := Execute(e, data)
			if err != nil {
				return nil, errors.Wrapf(err, ".%s", k)
			}
			m[k] = x
		}
		return m, nil
	case []any:
		s := make([]any, len(vv))
		for i, e := range vv {
			x, err := Execute(e, data)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			s[i] = x
		}
		return s, nil
	default:
		return v, nil
	}
}
