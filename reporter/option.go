package reporter

import (
	"io"

	"github.com/kycflow/kycflow/color"
)

// Option represents an option for test reporter.
type Option func(*testContext)

// WithWriter returns an option to set the writer.
func WithWriter(w io.Writer) Option {
	return func(ctx *testContext) {
		ctx.w = w
	}
}

// WithMaxParallel returns an option to set the number of parallel.
func WithMaxParallel(i int) Option {
	return func(ctx *testContext) {
		if i > 0 {
			ctx.maxParallel = int64(i)
		}
	}
}

// WithVerboseLog returns an option to enable verbose log.
func WithVerboseLog() Option {
	return func(ctx *testContext) {
		ctx.verbose = true
	}
}

// WithColorConfig returns an option to set the color configuration.
func WithColorConfig(c *color.Config) Option {
	return func(ctx *testContext) {
		if c != nil {
			ctx.colorConfig = c
		}
	}
}

// WithNoColor returns an option to disable colored output.
func WithNoColor() Option {
	return func(ctx *testContext) {
		c := color.New()
		c.SetEnabled(false)
		ctx.colorConfig = c
	}
}

// WithTestSummary returns an option to print the summary of a run.
func WithTestSummary() Option {
	return func(ctx *testContext) {
		ctx.testSummary = newTestSummary()
	}
}
