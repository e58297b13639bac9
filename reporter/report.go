package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
)

// TestResult represents a test result.
type TestResult int

const (
	TestResultUndefined TestResult = iota
	TestResultPassed
	TestResultFailed
	TestResultSkipped
)

// String returns r as a string.
func (r TestResult) String() string {
	switch r {
	case TestResultPassed:
		return "passed"
	case TestResultFailed:
		return "failed"
	case TestResultSkipped:
		return "skipped"
	default:
		return "undefined"
	}
}

// MarshalJSON implements json.Marshaler interface.
func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// TestResultOf returns the result of r.
func TestResultOf(r Reporter) TestResult {
	switch {
	case r.Failed():
		return TestResultFailed
	case r.Skipped():
		return TestResultSkipped
	default:
		return TestResultPassed
	}
}

// TestReport represents a report of a run.
// A scenario becomes a test suite and its steps become test cases.
type TestReport struct {
	XMLName   xml.Name         `json:"-" xml:"testsuites"`
	Result    TestResult       `json:"result" xml:"-"`
	Tests     int              `json:"tests" xml:"tests,attr"`
	Failures  int              `json:"failures" xml:"failures,attr"`
	Scenarios []ScenarioReport `json:"scenarios" xml:"testsuite"`
}

// ScenarioReport represents a report of a scenario.
type ScenarioReport struct {
	Name     string       `json:"name" xml:"name,attr"`
	Result   TestResult   `json:"result" xml:"-"`
	Duration float64      `json:"duration" xml:"time,attr"`
	Tests    int          `json:"tests" xml:"tests,attr"`
	Failures int          `json:"failures" xml:"failures,attr"`
	Skipped  int          `json:"skipped" xml:"skipped,attr"`
	Logs     []string     `json:"logs,omitempty" xml:"system-out,omitempty"`
	Steps    []StepReport `json:"steps" xml:"testcase"`
}

// StepReport represents a report of a step.
type StepReport struct {
	Name     string         `json:"name" xml:"name,attr"`
	Result   TestResult     `json:"result" xml:"-"`
	Duration float64        `json:"duration" xml:"time,attr"`
	Logs     []string       `json:"logs,omitempty" xml:"-"`
	Failure  *FailureReport `json:"-" xml:"failure,omitempty"`
	Skipped  *SkippedReport `json:"-" xml:"skipped,omitempty"`
}

// FailureReport represents a JUnit failure element.
type FailureReport struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

// SkippedReport represents a JUnit skipped element.
type SkippedReport struct {
	Message string `xml:"message,attr,omitempty"`
}

// GenerateTestReport generates a report of r.
// r must be the root reporter passed to Run.
func GenerateTestReport(r Reporter) (*TestReport, error) {
	rptr, ok := r.(*reporter)
	if !ok {
		return nil, fmt.Errorf("expected a reporter created by reporter.Run but got %T", r)
	}
	report := &TestReport{
		Result: TestResultOf(rptr),
	}
	for _, s := range rptr.getChildren() {
		sr := ScenarioReport{
			Name:     s.getName(),
			Result:   TestResultOf(s),
			Duration: s.getDuration().Seconds(),
			Logs:     s.getLogs(),
		}
		for _, step := range s.getChildren() {
			st := StepReport{
				Name:     step.getName(),
				Result:   TestResultOf(step),
				Duration: step.getDuration().Seconds(),
				Logs:     step.getLogs(),
			}
			switch st.Result {
			case TestResultFailed:
				sr.Failures++
				st.Failure = &FailureReport{
					Message: "failed",
					Content: strings.Join(st.Logs, "\n"),
				}
			case TestResultSkipped:
				sr.Skipped++
				st.Skipped = &SkippedReport{Message: strings.Join(st.Logs, "\n")}
			default:
			}
			sr.Steps = append(sr.Steps, st)
		}
		sr.Tests = len(sr.Steps)
		report.Tests += sr.Tests
		report.Failures += sr.Failures
		report.Scenarios = append(report.Scenarios, sr)
	}
	return report, nil
}

// MarshalJUnit encodes the report as JUnit XML.
func (r *TestReport) MarshalJUnit() ([]byte, error) {
	b, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// MarshalIndentJSON encodes the report as indented JSON.
func (r *TestReport) MarshalIndentJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
