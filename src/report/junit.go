// Package report summarizes the JUnit XML report a test step may emit.
// Kiln never interprets step output; the report file is the only structured
// signal it reads, and a missing report is not an error.
package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"kiln-agent/src/contracts"
)

// DefaultReportPath is where the test step is expected to drop its report,
// relative to the work dir.
const DefaultReportPath = "target/junit.xml"

// TestSuites is the root element for multiple test suites.
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	TestSuites []TestSuite `xml:"testsuite"`
}

// TestSuite represents a <testsuite> element.
type TestSuite struct {
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Errors    int        `xml:"errors,attr"`
	Skipped   int        `xml:"skipped,attr"`
	TestCases []TestCase `xml:"testcase"`
}

// TestCase represents a <testcase> element.
type TestCase struct {
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Failure   *Failure `xml:"failure"`
	Error     *Error   `xml:"error"`
	Skipped   *Skipped `xml:"skipped"`
}

// Failure represents a test failure.
type Failure struct {
	Message string `xml:"message,attr"`
}

// Error represents a test error.
type Error struct {
	Message string `xml:"message,attr"`
}

// Skipped represents a skipped test.
type Skipped struct {
	Message string `xml:"message,attr"`
}

// Parse parses JUnit XML data into a run test summary.
func Parse(data []byte) (*contracts.TestSummary, error) {
	// Try <testsuites> (multiple suites) first
	var suites TestSuites
	if err := xml.Unmarshal(data, &suites); err == nil && len(suites.TestSuites) > 0 {
		return summarize(suites.TestSuites), nil
	}

	// Fall back to a single <testsuite> root
	var suite TestSuite
	if err := xml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse JUnit XML: %w", err)
	}

	return summarize([]TestSuite{suite}), nil
}

// ParseFile reads and parses a report file. A missing file returns
// (nil, nil): the test step simply did not emit a report.
func ParseFile(path string) (*contracts.TestSummary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read test report: %w", err)
	}
	return Parse(data)
}

func summarize(suites []TestSuite) *contracts.TestSummary {
	summary := &contracts.TestSummary{}

	for _, suite := range suites {
		summary.Total += suite.Tests
		summary.Failures += suite.Failures
		summary.Errors += suite.Errors
		summary.Skipped += suite.Skipped

		for _, testCase := range suite.TestCases {
			if testCase.Failure == nil && testCase.Error == nil {
				continue
			}
			summary.Failed = append(summary.Failed, qualifiedName(suite, testCase))
		}
	}

	return summary
}

func qualifiedName(suite TestSuite, testCase TestCase) string {
	parts := []string{}
	if suite.Name != "" {
		parts = append(parts, suite.Name)
	}
	if testCase.ClassName != "" && testCase.ClassName != suite.Name {
		parts = append(parts, testCase.ClassName)
	}
	parts = append(parts, testCase.Name)
	return strings.Join(parts, "::")
}
