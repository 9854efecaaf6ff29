// Package sanitize cleans step output before it is retained or reported.
// It removes ANSI escape codes and masks secret values so that tokens
// passed to the agent never end up in stored run records, commit statuses,
// or broker messages.
package sanitize

import (
	"regexp"
	"strings"
)

// ANSI escape codes: \x1b[...m (SGR sequences)
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI escape codes from step output.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Scrubber masks a fixed set of secret values in text.
type Scrubber struct {
	secrets []string
}

// NewScrubber creates a scrubber for the given secret values. Empty values
// are ignored so an unset token never masks the empty string.
func NewScrubber(secrets ...string) *Scrubber {
	s := &Scrubber{}
	for _, sec := range secrets {
		if sec != "" {
			s.secrets = append(s.secrets, sec)
		}
	}
	return s
}

// Scrub strips ANSI codes and replaces every occurrence of a registered
// secret with a redaction marker.
func (s *Scrubber) Scrub(text string) string {
	text = StripANSI(text)
	for _, sec := range s.secrets {
		text = strings.ReplaceAll(text, sec, "[REDACTED]")
	}
	return text
}
