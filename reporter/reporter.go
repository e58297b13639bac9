// Package reporter provides test result reporters.
// It is intended to be used in kycflow.
package reporter

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/kycflow/kycflow/color"
)

// A Reporter is something that can be used to report test results.
type Reporter interface {
	Name() string
	Fail()
	Failed() bool
	FailNow()
	Log(args ...any)
	Logf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skip(args ...any)
	Skipf(format string, args ...any)
	SkipNow()
	Skipped() bool
	Parallel()
	Run(name string, f func(r Reporter)) bool
	Cleanup(f func())

	// for test reports
	getName() string
	getDuration() time.Duration
	getLogs() []string
	getChildren() []Reporter
}

// Run runs f with new Reporter which applied opts.
// It reports whether f succeeded.
func Run(f func(r Reporter), opts ...Option) bool {
	r := newReporter()
	r.context = newTestContext(opts...)
	go r.run(f)
	<-r.done

	// print errors which are not bound to a scenario (e.g., invalid config)
	if r.Failed() || r.context.verbose {
		c := r.passColor()
		if r.Failed() {
			c = r.failColor()
		}
		for _, l := range r.logs.all() {
			r.context.printf("%s\n", c.Sprint(l))
		}
	}

	r.printTestSummary()
	return !r.Failed()
}

// reporter is an implementation of Reporter that
// records its mutations for later inspection in reports.
type reporter struct {
	m          sync.Mutex
	context    *testContext
	parent     *reporter
	name       string
	goTestName string
	depth      int // Nesting depth of test.
	failed     int32
	skipped    int32
	isParallel bool
	holdsSlot  bool
	logs       *logRecorder
	duration   *durationMeasurer
	children   []*reporter
	cleanups   []func()

	barrier chan bool // To signal parallel subtests they may start.
	done    chan bool // To signal a test is done.
}

func newReporter() *reporter {
	return &reporter{
		logs:     &logRecorder{},
		duration: &durationMeasurer{},
		barrier:  make(chan bool),
		done:     make(chan bool),
	}
}

// Name returns the name of the running test.
func (r *reporter) Name() string {
	return r.goTestName
}

// Fail marks the function as having failed but continues execution.
func (r *reporter) Fail() {
	if r.parent != nil {
		r.parent.Fail()
	}
	atomic.StoreInt32(&r.failed, 1)
}

// Failed reports whether the function has failed.
func (r *reporter) Failed() bool {
	return atomic.LoadInt32(&r.failed) > 0
}

// FailNow marks the function as having failed and stops its execution
// by calling runtime.Goexit (which then runs all deferred calls in the
// current goroutine).
func (r *reporter) FailNow() {
	r.Fail()
	runtime.Goexit()
}

// Log formats its arguments using default formatting, analogous to fmt.Print,
// and records the text in the log.
// The text will be printed only if the test fails or the --verbose flag is set.
func (r *reporter) Log(args ...any) {
	r.logs.log(fmt.Sprint(args...))
}

// Logf formats its arguments according to the format, analogous to fmt.Printf, and
// records the text in the log.
func (r *reporter) Logf(format string, args ...any) {
	r.logs.log(fmt.Sprintf(format, args...))
}

// Error is equivalent to Log followed by Fail.
func (r *reporter) Error(args ...any) {
	r.Fail()
	r.logs.error(fmt.Sprint(args...))
}

// Errorf is equivalent to Logf followed by Fail.
func (r *reporter) Errorf(format string, args ...any) {
	r.Fail()
	r.logs.error(fmt.Sprintf(format, args...))
}

// Fatal is equivalent to Log followed by FailNow.
func (r *reporter) Fatal(args ...any) {
	r.Error(args...)
	runtime.Goexit()
}

// Fatalf is equivalent to Logf followed by FailNow.
func (r *reporter) Fatalf(format string, args ...any) {
	r.Errorf(format, args...)
	runtime.Goexit()
}

// Skip is equivalent to Log followed by SkipNow.
func (r *reporter) Skip(args ...any) {
	r.logs.log(fmt.Sprint(args...))
	r.SkipNow()
}

// Skipf is equivalent to Logf followed by SkipNow.
func (r *reporter) Skipf(format string, args ...any) {
	r.logs.log(fmt.Sprintf(format, args...))
	r.SkipNow()
}

// Skipped reports whether the test was skipped.
func (r *reporter) Skipped() bool {
	return atomic.LoadInt32(&r.skipped) > 0
}

// SkipNow marks the test as having been skipped and stops its execution
// by calling runtime.Goexit.
func (r *reporter) SkipNow() {
	atomic.StoreInt32(&r.skipped, 1)
	runtime.Goexit()
}

// Parallel signals that this test is to be run in parallel with (and only with)
// other parallel tests. It blocks until the parent test function returns and a
// worker slot is available.
func (r *reporter) Parallel() {
	r.m.Lock()
	if r.isParallel {
		r.m.Unlock()
		panic("reporter: Reporter.Parallel called multiple times")
	}
	r.isParallel = true
	r.m.Unlock()
	if r.parent == nil {
		return
	}

	r.duration.stop()
	if r.context.verbose {
		r.context.printf("=== PAUSE %s\n", r.goTestName)
	}
	r.done <- true     // Release calling test.
	<-r.parent.barrier // Wait for the parent test to complete.
	r.context.acquire()
	r.holdsSlot = true
	if r.context.verbose {
		r.context.printf("=== CONT  %s\n", r.goTestName)
	}
	r.duration.start()
}

// Cleanup registers a function to be called when the test completes.
// The cleanup functions are called in reverse order of registration (LIFO).
func (r *reporter) Cleanup(f func()) {
	r.m.Lock()
	defer r.m.Unlock()
	r.cleanups = append(r.cleanups, f)
}

// Run runs f as a subtest of r called name.
// It runs f in a separate goroutine and blocks until f returns or calls r.Parallel to become a parallel test.
// Run reports whether f succeeded (or at least did not fail before calling r.Parallel).
func (r *reporter) Run(name string, f func(t Reporter)) bool {
	child := r.spawn(name)
	if r.context.verbose {
		r.context.printf("=== RUN   %s\n", child.goTestName)
	}
	go child.run(f)
	<-child.done
	r.appendChildren(child)
	if r.isRoot() && !child.isParallel {
		printReport(child)
		r.context.testSummary.append(name, child)
	}
	return !child.Failed()
}

func (r *reporter) spawn(name string) *reporter {
	goTestName := rewrite(name)
	if r.goTestName != "" {
		goTestName = fmt.Sprintf("%s/%s", r.goTestName, goTestName)
	}
	child := newReporter()
	child.context = r.context
	child.parent = r
	child.name = name
	child.goTestName = goTestName
	child.depth = r.depth + 1
	return child
}

func (r *reporter) appendChildren(children ...*reporter) {
	r.m.Lock()
	r.children = append(r.children, children...)
	r.m.Unlock()
}

func (r *reporter) isRoot() bool {
	return r.depth == 0
}

func (r *reporter) run(f func(r Reporter)) {
	r.duration.start()
	defer r.finish()

	var finished bool
	defer func() {
		if !finished && !r.Failed() && !r.Skipped() {
			if err := recover(); err != nil {
				r.Error(err)
				r.Error(string(debug.Stack()))
				return
			}
			r.Error(errors.New("test executed panic(nil) or runtime.Goexit"))
		}
	}()
	f(r)
	finished = true
}

func (r *reporter) finish() {
	r.duration.stop()
	if err := recover(); err != nil {
		if !r.Failed() && !r.Skipped() {
			r.Error(err)
			r.Error(string(debug.Stack()))
		}
	}
	if r.holdsSlot {
		r.context.release()
	}

	r.m.Lock()
	var parallels []*reporter
	for _, child := range r.children {
		if child.isParallel {
			parallels = append(parallels, child)
		}
	}
	r.m.Unlock()

	// Release the parallel subtests and wait for them.
	close(r.barrier)
	for _, child := range parallels {
		<-child.done
		if r.isRoot() {
			printReport(child)
			r.context.testSummary.append(child.name, child)
		}
	}

	for i := len(r.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if err := recover(); err != nil {
					r.Errorf("panic in cleanup: %v\n%s", err, debug.Stack())
				}
			}()
			r.cleanups[i]()
		}()
	}

	r.done <- true
}

// rewrite rewrites a subname to having only printable characters and no white space.
func rewrite(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b = append(b, '_')
		case !strconv.IsPrint(r):
			s := strconv.QuoteRune(r)
			b = append(b, s[1:len(s)-1]...)
		default:
			b = append(b, string(r)...)
		}
	}
	return string(b)
}

func printReport(r *reporter) {
	var sb strings.Builder
	for _, l := range collectOutput(r) {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	r.context.print(sb.String())
}

func collectOutput(r *reporter) []string {
	var results []string
	if r.Failed() || r.context.verbose {
		prefix := strings.Repeat("    ", r.depth-1)
		status := "PASS"
		c := r.passColor()
		if r.Failed() {
			status = "FAIL"
			c = r.failColor()
		} else if r.Skipped() {
			status = "SKIP"
			c = r.skipColor()
		}
		results = []string{
			c.Sprintf("%s--- %s: %s (%.2fs)", prefix, status, r.goTestName, r.duration.get().Seconds()),
		}
		for _, l := range r.logs.all() {
			results = append(results, pad(l, prefix+"    "))
		}
	}
	for _, child := range r.children {
		results = append(results, collectOutput(child)...)
	}
	if r.depth == 1 {
		if r.Failed() {
			results = append(results,
				r.failColor().Sprintf("FAIL\nFAIL\t%s\t%.3fs", r.goTestName, r.duration.get().Seconds()),
			)
		} else {
			results = append(results,
				r.passColor().Sprintf("ok  \t%s\t%.3fs", r.goTestName, r.duration.get().Seconds()),
			)
		}
	}
	return results
}

func pad(s string, padding string) string {
	s = strings.Trim(s, "\n")
	indent := strings.Repeat(" ", 4)
	var b strings.Builder
	for i, l := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString(padding)
		b.WriteString(l)
	}
	return b.String()
}

func (r *reporter) printTestSummary() {
	if r.context.testSummary == nil {
		return
	}
	r.context.print(r.context.testSummary.String(r.context.colorConfig))
}

func (r *reporter) getName() string {
	return r.name
}

func (r *reporter) getDuration() time.Duration {
	return r.duration.get()
}

func (r *reporter) getLogs() []string {
	return r.logs.all()
}

func (r *reporter) getChildren() []Reporter {
	r.m.Lock()
	defer r.m.Unlock()
	children := make([]Reporter, len(r.children))
	for i, child := range r.children {
		children[i] = child
	}
	return children
}

func (r *reporter) passColor() *color.Color {
	return r.context.colorConfig.Pass()
}

func (r *reporter) failColor() *color.Color {
	return r.context.colorConfig.Fail()
}

func (r *reporter) skipColor() *color.Color {
	return r.context.colorConfig.Skip()
}
