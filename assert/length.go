package assert

import (
	"reflect"

	"github.com/kycflow/kycflow/errors"
)

// Length returns an assertion to ensure a value length is the expected value.
// expected is either a length or an Assertion applied to the length.
func Length(expected any) Assertion {
	assertion, ok := expected.(Assertion)
	if !ok {
		assertion = Equal(expected)
	}
	return AssertionFunc(func(v any) error {
		if s, ok := v.(string); ok {
			v = []rune(s)
		}
		vv := reflect.ValueOf(v)
		switch vv.Kind() {
		case reflect.Array, reflect.Slice, reflect.Map:
			if err := assertion.Assert(vv.Len()); err != nil {
				return errors.Wrap(err, "length")
			}
			return nil
		default:
			return errors.Errorf("can't get the length of %T", v)
		}
	})
}
