package reporter

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	tests := map[string]struct {
		f       func(r Reporter)
		ok      bool
		verbose bool
		expect  []string
		absent  []string
	}{
		"pass": {
			f: func(r Reporter) {
				r.Run("kyc-core", func(r Reporter) {
					r.Run("create verification", func(r Reporter) {
						r.Log("created")
					})
				})
			},
			ok:     true,
			expect: []string{"ok  \tkyc-core\t"},
			absent: []string{"created"},
		},
		"pass verbose": {
			f: func(r Reporter) {
				r.Run("kyc-core", func(r Reporter) {
					r.Run("create verification", func(r Reporter) {
						r.Log("created")
					})
				})
			},
			ok:      true,
			verbose: true,
			expect: []string{
				"=== RUN   kyc-core/create_verification",
				"--- PASS: kyc-core/create_verification",
				"created",
			},
		},
		"fail now stops the step": {
			f: func(r Reporter) {
				r.Run("kyc-core", func(r Reporter) {
					r.Run("create verification", func(r Reporter) {
						r.Fatal("status 500")
						r.Log("unreachable")
					})
				})
			},
			expect: []string{
				"--- FAIL: kyc-core (",
				"--- FAIL: kyc-core/create_verification",
				"status 500",
				"FAIL\tkyc-core\t",
			},
			absent: []string{"unreachable"},
		},
		"skip": {
			f: func(r Reporter) {
				r.Run("kyc-core", func(r Reporter) {
					r.Skip("disabled")
				})
			},
			ok:      true,
			verbose: true,
			expect:  []string{"--- SKIP: kyc-core", "disabled"},
		},
		"panic": {
			f: func(r Reporter) {
				r.Run("kyc-core", func(r Reporter) {
					panic("boom")
				})
			},
			expect: []string{"boom"},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var b bytes.Buffer
			opts := []Option{WithWriter(&b), WithNoColor()}
			if test.verbose {
				opts = append(opts, WithVerboseLog())
			}
			if got := Run(test.f, opts...); got != test.ok {
				t.Fatalf("expected %t but got %t:\n%s", test.ok, got, b.String())
			}
			out := b.String()
			for _, s := range test.expect {
				if !strings.Contains(out, s) {
					t.Errorf("output does not contain %q:\n%s", s, out)
				}
			}
			for _, s := range test.absent {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestRunParallel(t *testing.T) {
	var (
		running int32
		peak    int32
	)
	f := func(r Reporter) {
		r.Parallel()
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}
	var b bytes.Buffer
	ok := Run(func(r Reporter) {
		for _, name := range []string{"a", "b", "c", "d"} {
			r.Run(name, f)
		}
	}, WithWriter(&b), WithNoColor(), WithMaxParallel(2), WithTestSummary())
	if !ok {
		t.Fatalf("unexpected failure:\n%s", b.String())
	}
	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("expected at most 2 parallel scenarios but got %d", got)
	}
	if !strings.Contains(b.String(), "4 scenarios run: 4 passed, 0 failed, 0 skipped") {
		t.Errorf("unexpected summary:\n%s", b.String())
	}
}

func TestCleanup(t *testing.T) {
	var order []int
	Run(func(r Reporter) {
		r.Run("kyc-core", func(r Reporter) {
			r.Cleanup(func() { order = append(order, 1) })
			r.Cleanup(func() { order = append(order, 2) })
		})
	}, WithWriter(&bytes.Buffer{}))
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("cleanups must run in reverse order: %v", order)
	}
}

func TestGenerateTestReport(t *testing.T) {
	var root Reporter
	Run(func(r Reporter) {
		root = r
		r.Run("kyc-core", func(r Reporter) {
			r.Run("create verification", func(r Reporter) {})
			r.Run("get verification", func(r Reporter) {
				r.Error("expected 200 but got 404")
			})
		})
	}, WithWriter(&bytes.Buffer{}))

	report, err := GenerateTestReport(root)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if report.Result != TestResultFailed {
		t.Errorf("expected failed but got %s", report.Result)
	}
	if report.Tests != 2 || report.Failures != 1 {
		t.Errorf("unexpected counts: tests %d, failures %d", report.Tests, report.Failures)
	}
	if len(report.Scenarios) != 1 || report.Scenarios[0].Name != "kyc-core" {
		t.Fatalf("unexpected scenarios: %+v", report.Scenarios)
	}
	step := report.Scenarios[0].Steps[1]
	if step.Failure == nil || step.Failure.Content != "expected 200 but got 404" {
		t.Errorf("unexpected failure: %+v", step.Failure)
	}

	b, err := report.MarshalJUnit()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, s := range []string{
		`<testsuites tests="2" failures="1">`,
		`<testsuite name="kyc-core"`,
		`<failure message="failed">expected 200 but got 404</failure>`,
	} {
		if !strings.Contains(string(b), s) {
			t.Errorf("junit report does not contain %q:\n%s", s, b)
		}
	}
	j, err := report.MarshalIndentJSON()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(string(j), `"result": "failed"`) {
		t.Errorf("unexpected json report:\n%s", j)
	}

	if _, err := GenerateTestReport(FromT(t)); err == nil {
		t.Error("expected error but no error")
	}
}
