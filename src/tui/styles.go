package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds all customizable style colors for the run watch UI.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue   lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	BorderColor   lipgloss.Color
	SuccessGreen  lipgloss.Color
	FailureRed    lipgloss.Color
	PendingYellow lipgloss.Color
	SkippedGray   lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:   lipgloss.Color("#8AB4F8"),
		TextPrimary:   lipgloss.Color("#E8EAED"),
		TextSecondary: lipgloss.Color("#9AA0A6"),
		BorderColor:   lipgloss.Color("#5F6368"),
		SuccessGreen:  lipgloss.Color("#34A853"),
		FailureRed:    lipgloss.Color("#EA4335"),
		PendingYellow: lipgloss.Color("#FBBC04"),
		SkippedGray:   lipgloss.Color("#9AA0A6"),
	}
}

// TitleStyle returns the header lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 1)
}

// OutputStyle returns the style for the step output tail
func (s *StyleConfig) OutputStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// StepStyle returns the style for a step status line
func (s *StyleConfig) StepStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(color).
		Padding(0, 1)
}
