// Package protocol defines the APIs which steps use to send requests and assert responses.
package protocol

import (
	"github.com/kycflow/kycflow/assert"
	"github.com/kycflow/kycflow/context"
)

// Invoker is the interface that sends the request and returns response sent from the server.
type Invoker interface {
	Invoke(*context.Context) (*context.Context, any, error)
}

// InvokerFunc is an adaptor to allow the use of ordinary functions as Invoker.
func InvokerFunc(f func(*context.Context) (*context.Context, any, error)) Invoker {
	return invoker(f)
}

type invoker func(*context.Context) (*context.Context, any, error)

// Invoke implements Invoker interface.
func (f invoker) Invoke(ctx *context.Context) (*context.Context, any, error) {
	return f(ctx)
}

// AssertionBuilder builds the assertion for the result of Invoke.
type AssertionBuilder interface {
	Build(*context.Context) (assert.Assertion, error)
}

// AssertionBuilderFunc is an adaptor to allow the use of ordinary functions as AssertionBuilder.
func AssertionBuilderFunc(f func(*context.Context) (assert.Assertion, error)) AssertionBuilder {
	return assertionBuilder(f)
}

type assertionBuilder func(*context.Context) (assert.Assertion, error)

// Build implements AssertionBuilder interface.
func (f assertionBuilder) Build(ctx *context.Context) (assert.Assertion, error) {
	return f(ctx)
}

// Response is implemented by responses which have a status line like "200 OK".
type Response interface {
	StatusLine() string
}
