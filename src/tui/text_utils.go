package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate truncates text to maxLen characters (visual width) with optional ellipsis
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}

	visualWidth := VisualWidth(s)
	if visualWidth > maxLen {
		if ellipsis && maxLen > 3 {
			// Truncate to fit maxLen-3 visual characters, then add ellipsis
			return runewidth.Truncate(s, maxLen-3, "") + "..."
		}
		return runewidth.Truncate(s, maxLen, "")
	}
	return s
}

// TruncateAndPad truncates text with optional ellipsis and pads to exact width
// Used for the step label column to keep status icons aligned
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	visualWidth := VisualWidth(s)
	if visualWidth < width {
		return s + strings.Repeat(" ", width-visualWidth)
	}
	return s
}
