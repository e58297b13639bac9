package assert

import (
	"github.com/kycflow/kycflow/errors"
)

// And returns an assertion to ensure a value satisfies all assertions.
// Nested trees can be combined with leaf assertions like And(Length(1), Build([]any{...})).
func And(assertions ...Assertion) Assertion {
	return AssertionFunc(func(v any) error {
		var errs []error
		for _, assertion := range assertions {
			if err := assertion.Assert(v); err != nil {
				if _, ok := err.(errors.Error); !ok {
					err = &errors.PathError{Err: err}
				}
				errs = append(errs, err)
			}
		}
		return errors.Errors(errs...)
	})
}
