package http

import (
	"strconv"
	"strings"

	"github.com/kycflow/kycflow/assert"
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/errors"
)

// Expect represents expected response values.
type Expect struct {
	// Code is an exact status code like "200" or a class like "2xx".
	// It defaults to "200".
	Code string `yaml:"code,omitempty"`
	// Body is the expected shape of the decoded body.
	// Leaves are literal values or assert.Assertion.
	Body any `yaml:"body,omitempty"`
}

// Build implements protocol.AssertionBuilder interface.
func (e *Expect) Build(ctx *context.Context) (assert.Assertion, error) {
	expectBody, err := ctx.ExecuteTemplate(e.Body)
	if err != nil {
		return nil, errors.Wrap(err, "invalid expect response")
	}
	assertion := assert.Build(expectBody)

	return assert.AssertionFunc(func(v any) error {
		res, ok := v.(*Response)
		if !ok {
			return errors.Errorf("expected *http.Response but got %T", v)
		}
		if err := e.assertCode(res); err != nil {
			return errors.Assertion(err)
		}
		if err := assertion.Assert(res.Body); err != nil {
			return errors.Assertion(err)
		}
		return nil
	}), nil
}

func (e *Expect) assertCode(res *Response) error {
	expected := "200"
	if e.Code != "" {
		expected = e.Code
	}
	if matchCode(expected, res.StatusCode) {
		return nil
	}
	return errors.Errorf(`expected code is "%s" but got "%s"`, expected, res.Status)
}

func matchCode(expected string, code int) bool {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if len(expected) == 3 && strings.HasSuffix(expected, "xx") {
		class, err := strconv.Atoi(expected[:1])
		return err == nil && code/100 == class
	}
	n, err := strconv.Atoi(expected)
	return err == nil && n == code
}
