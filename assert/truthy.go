package assert

import (
	"encoding/json"
	"reflect"

	"github.com/kycflow/kycflow/errors"
)

type truthiness struct {
	want bool
}

// Truthy returns an assertion to ensure a value is truthy.
// null, false, zero numbers and empty strings are falsy, everything else is truthy.
func Truthy() Assertion {
	return &truthiness{want: true}
}

// Falsy returns an assertion to ensure a value is falsy.
// A missing value is falsy too.
func Falsy() Assertion {
	return &truthiness{want: false}
}

func (t *truthiness) Assert(v any) error {
	if got := truthy(v); got != t.want {
		if t.want {
			return errors.Errorf("expected truthy value but got %s", describe(v))
		}
		return errors.Errorf("expected falsy value but got %s", describe(v))
	}
	return nil
}

func (t *truthiness) acceptAbsent() bool {
	return !t.want
}

func truthy(v any) bool {
	switch vv := v.(type) {
	case nil:
		return false
	case bool:
		return vv
	case string:
		return vv != ""
	case json.Number:
		f, err := vv.Float64()
		return err != nil || f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

// Defined returns an assertion to ensure a value is present and not null.
func Defined() Assertion {
	return AssertionFunc(func(v any) error {
		if v == nil {
			return errors.New("expected a value but got null")
		}
		return nil
	})
}

// NotZero returns an assertion to ensure a value is not the zero value of its type.
func NotZero() Assertion {
	return AssertionFunc(func(v any) error {
		if v == nil || reflect.ValueOf(v).IsZero() {
			return errors.Errorf("expected non-zero value but got %s", describe(v))
		}
		return nil
	})
}
