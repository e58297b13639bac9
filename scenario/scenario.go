// Package scenario runs ordered steps which share a single Scenario State.
package scenario

import (
	"fmt"
	"sort"

	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/errors"
	"github.com/kycflow/kycflow/internal/queryutil"
	"github.com/kycflow/kycflow/protocol"
)

// State is the mutable record of a single scenario.
type State = context.State

// NewState returns an empty State.
func NewState() *State {
	return context.NewState()
}

// Scenario is an ordered list of dependent steps.
type Scenario struct {
	Name  string
	Steps []*Step
}

// Step represents a single interaction.
type Step struct {
	Title   string
	Request protocol.Invoker
	// Expect asserts the response.
	// A step without Expect logs the response and never fails on its shape.
	Expect protocol.AssertionBuilder
	// Bind copies fields of the response into the State.
	// Keys are State keys and values are queries like ".body.id".
	Bind map[string]string
}

// Run runs s as a subtest of ctx.
func Run(ctx *context.Context, s *Scenario) bool {
	return ctx.Run(s.Name, func(ctx *context.Context) {
		Execute(ctx, s)
	})
}

// Execute runs the steps of s as subtests of ctx with a new State.
// It stops at the first failed step and reports the remaining steps as skipped.
func Execute(ctx *context.Context, s *Scenario) {
	ctx = ctx.WithState(NewState())
	for i, step := range s.Steps {
		var next *context.Context
		ok := ctx.Run(step.name(i), func(ctx *context.Context) {
			var err error
			next, err = RunStep(ctx, s.Name, step)
			if err != nil {
				ctx.Reporter().Fatal(err)
			}
		})
		if !ok {
			for j := i + 1; j < len(s.Steps); j++ {
				ctx.Run(s.Steps[j].name(j), func(ctx *context.Context) {
					ctx.Reporter().Skipf("skipped because %q failed", step.name(i))
				})
			}
			ctx.Reporter().FailNow()
		}
		if next != nil {
			ctx = next.WithReporter(ctx.Reporter())
		}
	}
}

func (s *Step) name(i int) string {
	if s.Title != "" {
		return s.Title
	}
	return fmt.Sprintf("step %d", i+1)
}

// RunStep invokes the request of step, asserts the response and binds its fields into the State.
// Every failure is a *errors.StepError.
func RunStep(ctx *context.Context, scenario string, step *Step) (*context.Context, error) {
	stepErr := func(err error, resp any) error {
		e := &errors.StepError{
			Scenario: scenario,
			Step:     step.Title,
			Err:      err,
		}
		if r, ok := resp.(protocol.Response); ok {
			e.Status = r.StatusLine()
		}
		return e
	}
	if step.Request == nil {
		return ctx, stepErr(errors.New("no request"), nil)
	}

	newCtx, resp, err := step.Request.Invoke(ctx)
	if err != nil {
		return ctx, stepErr(err, resp)
	}

	if step.Expect == nil {
		logResponse(newCtx, resp)
	} else {
		assertion, err := step.Expect.Build(newCtx)
		if err != nil {
			return ctx, stepErr(errors.Wrap(err, "failed to build assertion"), resp)
		}
		if err := assertion.Assert(resp); err != nil {
			return ctx, stepErr(err, resp)
		}
	}

	if err := bind(newCtx, step.Bind, resp); err != nil {
		return ctx, stepErr(err, resp)
	}
	return newCtx, nil
}

func bind(ctx *context.Context, rules map[string]string, resp any) error {
	if len(rules) == 0 {
		return nil
	}
	st := ctx.State()
	if st == nil {
		return errors.New("no state to bind the response")
	}
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q, err := queryutil.Parse(rules[key])
		if err != nil {
			return errors.Wrapf(err, "invalid query %q", rules[key])
		}
		v, err := q.Extract(resp)
		if err != nil {
			return errors.Assertion(errors.ErrorQueryf(q, "failed to bind %s: %s", key, err))
		}
		if v == nil {
			return errors.Assertion(errors.ErrorQueryf(q, "failed to bind %s: value is null", key))
		}
		if err := st.Set(key, v); err != nil {
			return errors.Wrapf(err, "failed to bind %s", key)
		}
	}
	return nil
}

func logResponse(ctx *context.Context, resp any) {
	b, err := ctx.ColorConfig().MarshalYAML(resp)
	if err != nil {
		ctx.Reporter().Logf("failed to dump the response: %s", err)
		return
	}
	ctx.Reporter().Logf("response (not asserted):\n%s", b)
}
