package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure of a scenario.
type Kind string

const (
	KindAuth      Kind = "auth"
	KindTransport Kind = "transport"
	KindAssertion Kind = "assertion"
	KindUnknown   Kind = "unknown"
)

// AuthError reports that a credential could not be acquired.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth error: %s", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// TransportError reports a network failure or an unreadable fixture.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %s", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// AssertionFailure reports that a response did not match the expected contract.
type AssertionFailure struct {
	Err error
}

func (e *AssertionFailure) Error() string { return fmt.Sprintf("assertion failure: %s", e.Err) }
func (e *AssertionFailure) Unwrap() error { return e.Err }

func Auth(err error) error {
	if err == nil {
		return nil
	}
	return &AuthError{Err: err}
}

func Authf(format string, args ...any) error {
	return &AuthError{Err: errors.Errorf(format, args...)}
}

func Transport(err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Err: err}
}

func Transportf(format string, args ...any) error {
	return &TransportError{Err: errors.Errorf(format, args...)}
}

func Assertion(err error) error {
	if err == nil {
		return nil
	}
	return &AssertionFailure{Err: err}
}

func Assertionf(format string, args ...any) error {
	return &AssertionFailure{Err: errors.Errorf(format, args...)}
}

// KindOf returns the kind of err.
func KindOf(err error) Kind {
	var (
		ae *AuthError
		te *TransportError
		af *AssertionFailure
	)
	switch {
	case errors.As(err, &ae):
		return KindAuth
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &af):
		return KindAssertion
	default:
		return KindUnknown
	}
}

// StepError locates a failure at a step of a scenario.
type StepError struct {
	Scenario string
	Step     string
	// Status is the HTTP status line observed by the step, if any.
	Status string
	Err    error
}

func (e *StepError) Error() string {
	status := e.Status
	if status == "" {
		status = "no response"
	}
	return fmt.Sprintf("%s: step %q failed (%s, status: %s):\n%s", e.Scenario, e.Step, KindOf(e.Err), status, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
