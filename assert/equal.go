package assert

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/kycflow/kycflow/errors"
)

// Equal returns an assertion to ensure a value equals the expected value.
// Numbers are compared by value regardless of their Go type.
func Equal(expected any) Assertion {
	return AssertionFunc(func(v any) error {
		if equal(expected, v) {
			return nil
		}
		return errors.Errorf("expected %s but got %s", describe(expected), describe(v))
	})
}

func equal(expected, actual any) bool {
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	e, eok := toBigFloat(expected)
	a, aok := toBigFloat(actual)
	if eok && aok {
		return e.Cmp(a) == 0
	}
	return false
}

func toBigFloat(v any) (*big.Float, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return new(big.Float).SetInt64(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return big.NewFloat(f), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return new(big.Float).SetInt64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Float).SetUint64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return big.NewFloat(rv.Float()), true
	default:
		return nil, false
	}
}

func describe(v any) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", vv)
	case json.Number:
		return vv.String()
	default:
		return fmt.Sprintf("%v", vv)
	}
}
