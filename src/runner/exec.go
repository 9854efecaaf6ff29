package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandSpec describes one external command invocation.
type CommandSpec struct {
	// Argv is the command and its arguments.
	Argv []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env entries are appended to the parent environment.
	Env []string
}

// CommandRunner executes external commands. The runner and the toolchain
// provisioner both go through this interface so tests can fake process
// execution.
type CommandRunner interface {
	// Run executes the command, delivering each output line (stdout and
	// stderr interleaved) to onLine as it is produced. Returns the exit
	// code. A non-zero exit is not an error; err is reserved for
	// failures to run the command at all.
	Run(ctx context.Context, spec CommandSpec, onLine func(string)) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates the real command runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner.
func (e *ExecRunner) Run(ctx context.Context, spec CommandSpec, onLine func(string)) (int, error) {
	if len(spec.Argv) == 0 {
		return -1, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)

	lw := &lineWriter{onLine: onLine}
	cmd.Stdout = lw
	cmd.Stderr = lw

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	err := cmd.Wait()
	lw.Flush()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}

	return 0, nil
}

// lineWriter splits an output stream into lines and hands them to a
// callback. stdout and stderr share one instance, so writes are serialized
// with a mutex.
type lineWriter struct {
	mu     sync.Mutex
	buf    strings.Builder
	onLine func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		if b == '\n' {
			w.emit()
			continue
		}
		w.buf.WriteByte(b)
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit()
	}
}

func (w *lineWriter) emit() {
	line := strings.TrimSuffix(w.buf.String(), "\r")
	w.buf.Reset()
	if w.onLine != nil {
		w.onLine(line)
	}
}
