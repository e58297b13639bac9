package reporter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kycflow/kycflow/color"
)

type testSummary struct {
	mu      sync.Mutex
	passed  int
	failed  []string
	skipped int
}

func newTestSummary() *testSummary {
	return &testSummary{
		failed: []string{},
	}
}

func (s *testSummary) append(scenario string, r Reporter) {
	if s == nil {
		return
	}
	result := TestResultOf(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	switch result {
	case TestResultPassed:
		s.passed++
	case TestResultFailed:
		s.failed = append(s.failed, scenario)
	case TestResultSkipped:
		s.skipped++
	default:
	}
}

// String converts testSummary to the string like below.
// 3 scenarios run: 1 passed, 2 failed, 0 skipped
//
// Failed scenarios:
//   - kyc-core
//   - gateway
func (s *testSummary) String(c *color.Config) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		c = color.New()
	}
	return fmt.Sprintf(
		"\n%d scenarios run: %s, %s, %s\n\n%s",
		s.passed+len(s.failed)+s.skipped,
		c.Pass().Sprintf("%d passed", s.passed),
		c.Fail().Sprintf("%d failed", len(s.failed)),
		c.Skip().Sprintf("%d skipped", s.skipped),
		c.Fail().Sprint(s.failedScenarios()),
	)
}

func (s *testSummary) failedScenarios() string {
	if len(s.failed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Failed scenarios:\n")
	for _, name := range s.failed {
		fmt.Fprintf(&b, "\t- %s\n", name)
	}
	b.WriteString("\n")
	return b.String()
}
