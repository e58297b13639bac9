package reporter

import (
	"testing"
	"time"
)

// FromT creates Reporter from t.
func FromT(t *testing.T) Reporter {
	t.Helper()
	return &testReporter{T: t}
}

type testReporter struct {
	*testing.T
}

// Run runs f as a subtest of r called name.
func (r *testReporter) Run(name string, f func(r Reporter)) bool {
	r.T.Helper()
	return r.T.Run(name, func(t *testing.T) {
		t.Helper()
		f(FromT(t))
	})
}

func (r *testReporter) getName() string            { return r.T.Name() }
func (r *testReporter) getDuration() time.Duration { return 0 }
func (r *testReporter) getLogs() []string          { return nil }
func (r *testReporter) getChildren() []Reporter    { return nil }
