package runner

import "testing"

func TestLineWriterSplitsLines(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(l string) { lines = append(lines, l) }}

	w.Write([]byte("first li"))
	w.Write([]byte("ne\nsecond line\npartial"))
	w.Flush()

	expected := []string{"first line", "second line", "partial"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestLineWriterStripsCarriageReturn(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(l string) { lines = append(lines, l) }}

	w.Write([]byte("windows line\r\n"))

	if len(lines) != 1 || lines[0] != "windows line" {
		t.Errorf("Expected ['windows line'], got %v", lines)
	}
}

func TestLineWriterFlushEmptyIsNoop(t *testing.T) {
	var lines []string
	w := &lineWriter{onLine: func(l string) { lines = append(lines, l) }}

	w.Write([]byte("done\n"))
	w.Flush()

	if len(lines) != 1 {
		t.Errorf("Flush after complete line emitted extra lines: %v", lines)
	}
}
