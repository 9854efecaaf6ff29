package report

import (
	"os"
	"path/filepath"
	"testing"
)

const multiSuiteXML = `<?xml version="1.0"?>
<testsuites>
  <testsuite name="widget" tests="3" failures="1" errors="0" skipped="1">
    <testcase classname="widget" name="parses_empty_input"/>
    <testcase classname="widget" name="rejects_oversized_input">
      <failure message="assertion failed: len &lt; 4096"/>
    </testcase>
    <testcase classname="widget" name="windows_only">
      <skipped message="not supported"/>
    </testcase>
  </testsuite>
  <testsuite name="codec" tests="1" failures="0" errors="1">
    <testcase classname="codec::roundtrip" name="roundtrip_large">
      <error message="process aborted"/>
    </testcase>
  </testsuite>
</testsuites>`

const singleSuiteXML = `<?xml version="1.0"?>
<testsuite name="widget" tests="2" failures="0" errors="0">
  <testcase classname="widget" name="a"/>
  <testcase classname="widget" name="b"/>
</testsuite>`

func TestParseMultipleSuites(t *testing.T) {
	summary, err := Parse([]byte(multiSuiteXML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if summary.Total != 4 {
		t.Errorf("Expected 4 tests, got %d", summary.Total)
	}
	if summary.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", summary.Failures)
	}
	if summary.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", summary.Errors)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", summary.Skipped)
	}

	if len(summary.Failed) != 2 {
		t.Fatalf("Expected 2 failed names, got %v", summary.Failed)
	}
	if summary.Failed[0] != "widget::rejects_oversized_input" {
		t.Errorf("Unexpected failed name %q", summary.Failed[0])
	}
	if summary.Failed[1] != "codec::codec::roundtrip::roundtrip_large" {
		t.Errorf("Unexpected failed name %q", summary.Failed[1])
	}
}

func TestParseSingleSuite(t *testing.T) {
	summary, err := Parse([]byte(singleSuiteXML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if summary.Total != 2 || len(summary.Failed) != 0 {
		t.Errorf("Expected 2 passing tests, got %+v", summary)
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := Parse([]byte("not xml at all <<<")); err == nil {
		t.Error("Expected error for invalid XML")
	}
}

func TestParseFileMissingIsNil(t *testing.T) {
	summary, err := ParseFile(filepath.Join(t.TempDir(), "junit.xml"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if summary != nil {
		t.Errorf("Expected nil summary for missing report, got %+v", summary)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	if err := os.WriteFile(path, []byte(singleSuiteXML), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	summary, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if summary == nil || summary.Total != 2 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
