// Package logger defines the logging interface used throughout the agent.
// Different implementations suit different contexts: console output for the
// standalone agents, silent for TUI mode where log lines would corrupt the
// display.
package logger

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Logger is implemented by all log sinks in the agent.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#34A853"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA4335"))
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA0A6"))
)

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Level prefixes are colored when color is enabled; the color switch is
// cosmetic only and has no behavioral effect.
type ConsoleLogger struct {
	color bool
}

// NewConsoleLogger creates a console logger. color controls whether level
// prefixes are styled with ANSI colors.
func NewConsoleLogger(color bool) *ConsoleLogger {
	return &ConsoleLogger{color: color}
}

func (c *ConsoleLogger) prefix(label string, style lipgloss.Style) string {
	if !c.color {
		return "[" + label + "]"
	}
	return style.Render("[" + label + "]")
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf(c.prefix("INFO", infoStyle)+" "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, c.prefix("ERROR", errorStyle)+" "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	fmt.Printf(c.prefix("DEBUG", debugStyle)+" "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used when running in TUI mode to prevent log output from interfering
// with the display.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
