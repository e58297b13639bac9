// Package assert provides assertions over decoded response bodies.
package assert

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/zoncoen/query-go"

	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/internal/queryutil"
)

// Assertion implements value assertion.
type Assertion interface {
	Assert(v any) error
}

// AssertionFunc is an adaptor to allow the use of ordinary functions as assertions.
type AssertionFunc func(v any) error

// Assert asserts the v.
func (f AssertionFunc) Assert(v any) error {
	return f(v)
}

// absentAssertion is implemented by assertions which also accept a missing value.
type absentAssertion interface {
	Assertion
	acceptAbsent() bool
}

// Build creates an assertion from an expected value tree.
// Maps and slices are walked and every leaf is asserted at its path.
// A leaf which is an Assertion is used as is, any other leaf must be equal.
func Build(expect any) Assertion {
	var assertions []Assertion
	if expect != nil {
		assertions = build(queryutil.New(), expect)
	}
	return AssertionFunc(func(v any) error {
		var errs []error
		for _, assertion := range assertions {
			if err := assertion.Assert(v); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Errors(errs...)
	})
}

func build(q *query.Query, expect any) []Assertion {
	var assertions []Assertion
	switch v := expect.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			assertions = append(assertions, build(q.Key(k), v[k])...)
		}
	case yaml.MapSlice:
		for _, item := range v {
			assertions = append(assertions, build(q.Key(fmt.Sprint(item.Key)), item.Value)...)
		}
	case []any:
		for i, elm := range v {
			assertions = append(assertions, build(q.Index(i), elm)...)
		}
	case Assertion:
		assertions = append(assertions, at(q, v))
	default:
		assertions = append(assertions, at(q, Equal(v)))
	}
	return assertions
}

// at applies assertion to the value of v located by q.
func at(q *query.Query, assertion Assertion) Assertion {
	return AssertionFunc(func(v any) error {
		got, err := q.Extract(v)
		if err != nil {
			if a, ok := assertion.(absentAssertion); ok && a.acceptAbsent() {
				return nil
			}
			return errors.ErrorQueryf(q, "not found")
		}
		if err := assertion.Assert(got); err != nil {
			return errors.WithQuery(err, q)
		}
		return nil
	})
}
