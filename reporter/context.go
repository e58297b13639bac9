package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kycflow/kycflow/color"
)

// testContext holds the settings shared by all reporters of a run.
type testContext struct {
	m           sync.Mutex
	w           io.Writer
	verbose     bool
	colorConfig *color.Config
	testSummary *testSummary

	maxParallel int64
	sem         *semaphore.Weighted
}

func newTestContext(opts ...Option) *testContext {
	ctx := &testContext{
		w:           os.Stdout,
		colorConfig: color.New(),
		maxParallel: 1,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.sem = semaphore.NewWeighted(ctx.maxParallel)
	return ctx
}

func (c *testContext) acquire() {
	// Acquire only fails when the context is canceled.
	_ = c.sem.Acquire(context.Background(), 1)
}

func (c *testContext) release() {
	c.sem.Release(1)
}

func (c *testContext) print(a ...any) {
	c.m.Lock()
	defer c.m.Unlock()
	fmt.Fprint(c.w, a...)
}

func (c *testContext) printf(format string, a ...any) {
	c.m.Lock()
	defer c.m.Unlock()
	fmt.Fprintf(c.w, format, a...)
}
