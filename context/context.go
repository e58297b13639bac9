// Package context provides the test context of kycflow.
package context

import (
	"context"
	"testing"

	"github.com/kycflow/kycflow/color"
	"github.com/kycflow/kycflow/reporter"
)

type (
	keyVars        struct{}
	keyState       struct{}
	keyRequest     struct{}
	keyResponse    struct{}
	keyColorConfig struct{}
	keyVerbose     struct{}
)

// Context represents a kycflow context.
type Context struct {
	ctx      context.Context
	reqCtx   context.Context
	reporter reporter.Reporter
}

// New returns a new kycflow context.
func New(r reporter.Reporter) *Context {
	return newContext(context.Background(), context.Background(), r)
}

// FromT creates a new context from t.
func FromT(t *testing.T) *Context {
	t.Helper()
	return newContext(context.Background(), t.Context(), reporter.FromT(t))
}

func newContext(ctx, reqCtx context.Context, r reporter.Reporter) *Context {
	return &Context{
		ctx:      ctx,
		reqCtx:   reqCtx,
		reporter: r,
	}
}

// WithRequestContext returns a copy of c with the context.Context for requests.
func (c *Context) WithRequestContext(reqCtx context.Context) *Context {
	return newContext(c.ctx, reqCtx, c.reporter)
}

// RequestContext returns the context.Context for requests.
func (c *Context) RequestContext() context.Context {
	return c.reqCtx
}

// WithReporter returns a copy of c with new test reporter.
func (c *Context) WithReporter(r reporter.Reporter) *Context {
	return newContext(c.ctx, c.reqCtx, r)
}

// Reporter returns the reporter of context.
func (c *Context) Reporter() reporter.Reporter {
	return c.reporter
}

func (c *Context) with(key, v any) *Context {
	return newContext(context.WithValue(c.ctx, key, v), c.reqCtx, c.reporter)
}

// WithVars returns a copy of c with v appended to the template variables.
func (c *Context) WithVars(v map[string]any) *Context {
	if v == nil {
		return c
	}
	vars, _ := c.ctx.Value(keyVars{}).(Vars)
	return c.with(keyVars{}, vars.Append(v))
}

// Vars returns the template variables.
// The Scenario State, when set, takes precedence over them.
func (c *Context) Vars() Vars {
	vars, _ := c.ctx.Value(keyVars{}).(Vars)
	if st := c.State(); st != nil {
		return vars.Append(st.Snapshot())
	}
	return vars
}

// WithState returns a copy of c with the Scenario State.
func (c *Context) WithState(st *State) *Context {
	if st == nil {
		return c
	}
	return c.with(keyState{}, st)
}

// State returns the Scenario State.
func (c *Context) State() *State {
	st, _ := c.ctx.Value(keyState{}).(*State)
	return st
}

// WithRequest returns a copy of c with request.
func (c *Context) WithRequest(req any) *Context {
	if req == nil {
		return c
	}
	return c.with(keyRequest{}, req)
}

// Request returns the request.
func (c *Context) Request() any {
	return c.ctx.Value(keyRequest{})
}

// WithResponse returns a copy of c with response.
func (c *Context) WithResponse(resp any) *Context {
	if resp == nil {
		return c
	}
	return c.with(keyResponse{}, resp)
}

// Response returns the response.
func (c *Context) Response() any {
	return c.ctx.Value(keyResponse{})
}

// WithColorConfig returns a copy of c with the color configuration.
func (c *Context) WithColorConfig(cc *color.Config) *Context {
	if cc == nil {
		return c
	}
	return c.with(keyColorConfig{}, cc)
}

// ColorConfig returns the color configuration.
func (c *Context) ColorConfig() *color.Config {
	if cc, ok := c.ctx.Value(keyColorConfig{}).(*color.Config); ok {
		return cc
	}
	return color.New()
}

// WithVerbose returns a copy of c which dumps requests and responses.
func (c *Context) WithVerbose(verbose bool) *Context {
	return c.with(keyVerbose{}, verbose)
}

// Verbose reports whether requests and responses are dumped.
func (c *Context) Verbose() bool {
	v, _ := c.ctx.Value(keyVerbose{}).(bool)
	return v
}

// Run runs f as a subtest of c called name.
func (c *Context) Run(name string, f func(*Context)) bool {
	return c.Reporter().Run(name, func(r reporter.Reporter) { f(c.WithReporter(r)) })
}
