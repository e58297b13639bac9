// Package errors provides the error taxonomy of kycflow.
package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/zoncoen/query-go"
)

func New(message string) error {
	return errors.New(message)
}

func Errorf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

func Wrap(err error, message string) error {
	if e, ok := err.(Error); ok {
		e.Wrapf(message)
		return e
	}
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	if e, ok := err.(Error); ok {
		e.Wrapf(format, args...)
		return e
	}
	return errors.Wrapf(err, format, args...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Error is implemented by errors that carry a query path.
type Error interface {
	AppendPath(string)
	Wrapf(string, ...any)
	Error() string
}

// ErrorPathf returns an error located at the given response path.
func ErrorPathf(path, format string, args ...any) error {
	return &PathError{
		Path: "." + strings.TrimPrefix(path, "."),
		Err:  errors.Errorf(format, args...),
	}
}

// ErrorQueryf returns an error located at the path of q.
func ErrorQueryf(q *query.Query, format string, args ...any) error {
	return &PathError{
		Path: q.String(),
		Err:  errors.Errorf(format, args...),
	}
}

// WithQuery locates err at the path of q.
func WithQuery(err error, q *query.Query) error {
	if e, ok := err.(Error); ok {
		e.AppendPath(q.String())
		return e
	}
	return &PathError{
		Path: q.String(),
		Err:  err,
	}
}

// WithPath prefixes the location of err with path.
func WithPath(err error, path string) error {
	path = "." + strings.TrimPrefix(path, ".")
	if e, ok := err.(Error); ok {
		e.AppendPath(path)
		return e
	}
	return &PathError{
		Path: path,
		Err:  err,
	}
}

// Errors bundles errs into one error. It returns nil for no errors.
func Errors(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiPathError{Errs: filtered}
}

// PathError represents an error at a path of a response body.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) AppendPath(path string) {
	e.Path = path + e.Path
}

func (e *PathError) Wrapf(format string, args ...any) {
	e.Err = errors.Wrapf(e.Err, format, args...)
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// MultiPathError bundles errors of several paths.
type MultiPathError struct {
	Errs   []error
	prefix string
}

func (e *MultiPathError) Error() string {
	mulerr := &multierror.Error{
		ErrorFormat: func(es []error) string {
			if len(es) == 1 {
				return es[0].Error()
			}
			points := make([]string, len(es))
			for i, err := range es {
				points[i] = fmt.Sprintf("\t* %s", err)
			}
			return fmt.Sprintf("%d errors occurred:\n%s", len(es), strings.Join(points, "\n"))
		},
	}
	for _, err := range e.Errs {
		mulerr = multierror.Append(mulerr, err)
	}
	if e.prefix != "" {
		return e.prefix + ": " + mulerr.Error()
	}
	return mulerr.Error()
}

func (e *MultiPathError) AppendPath(path string) {
	for _, err := range e.Errs {
		if pe, ok := err.(Error); ok {
			pe.AppendPath(path)
		}
	}
}

func (e *MultiPathError) Wrapf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.prefix == "" {
		e.prefix = msg
		return
	}
	e.prefix = msg + ": " + e.prefix
}
