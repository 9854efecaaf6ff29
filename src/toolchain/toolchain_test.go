package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kiln-agent/src/logger"
	"kiln-agent/src/runner"
)

type fakeExec struct {
	results []fakeResult
	calls   [][]string
}

type fakeResult struct {
	exitCode int
	lines    []string
	err      error
}

func (f *fakeExec) Run(ctx context.Context, spec runner.CommandSpec, onLine func(string)) (int, error) {
	f.calls = append(f.calls, spec.Argv)
	res := f.results[len(f.calls)-1]
	if res.err != nil {
		return -1, res.err
	}
	for _, line := range res.lines {
		onLine(line)
	}
	return res.exitCode, nil
}

func TestEnsureResolvesVersionAndFingerprint(t *testing.T) {
	fake := &fakeExec{results: []fakeResult{
		{exitCode: 0, lines: []string{"stable-x86_64-unknown-linux-gnu unchanged"}},
		{exitCode: 0, lines: []string{"rustc 1.81.0 (eeb90cda1 2024-09-04)"}},
	}}

	p := NewProvisioner("stable", fake, logger.NewSilentLogger())
	tc, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	if tc.Channel != "stable" {
		t.Errorf("Expected channel 'stable', got %q", tc.Channel)
	}
	if tc.Version != "rustc 1.81.0 (eeb90cda1 2024-09-04)" {
		t.Errorf("Unexpected version %q", tc.Version)
	}
	if tc.Fingerprint != Fingerprint(tc.Version) {
		t.Errorf("Fingerprint does not match version digest")
	}

	if len(fake.calls) != 2 {
		t.Fatalf("Expected 2 commands, got %v", fake.calls)
	}
	if strings.Join(fake.calls[0], " ") != "rustup toolchain install stable" {
		t.Errorf("Unexpected install command: %v", fake.calls[0])
	}
	if strings.Join(fake.calls[1], " ") != "rustup run stable rustc --version" {
		t.Errorf("Unexpected version command: %v", fake.calls[1])
	}
}

func TestEnsureInstallFailure(t *testing.T) {
	fake := &fakeExec{results: []fakeResult{
		{exitCode: 1, lines: []string{"error: no release found"}},
	}}

	p := NewProvisioner("stable", fake, logger.NewSilentLogger())
	if _, err := p.Ensure(context.Background()); err == nil {
		t.Error("Expected error on install failure")
	}
}

func TestEnsureCommandMissing(t *testing.T) {
	fake := &fakeExec{results: []fakeResult{
		{err: errors.New("rustup: executable not found")},
	}}

	p := NewProvisioner("stable", fake, logger.NewSilentLogger())
	if _, err := p.Ensure(context.Background()); err == nil {
		t.Error("Expected error when rustup cannot run")
	}
}

func TestFingerprintProperties(t *testing.T) {
	a := Fingerprint("rustc 1.81.0")
	b := Fingerprint("rustc 1.81.0")
	c := Fingerprint("rustc 1.82.0")

	if a != b {
		t.Error("Identical versions produced differing fingerprints")
	}
	if a == c {
		t.Error("Differing versions produced identical fingerprints")
	}
	if len(a) != 16 {
		t.Errorf("Expected 16 hex chars, got %d (%s)", len(a), a)
	}

	// Whitespace is not significant
	if Fingerprint(" rustc 1.81.0 \n") != a {
		t.Error("Fingerprint should trim whitespace")
	}
}
