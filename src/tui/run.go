// Package tui provides the terminal user interface for watching a live
// pipeline run: the per-step status board and a tail of sanitized step
// output, updated as the run progresses.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"kiln-agent/src/contracts"
	"kiln-agent/src/runner"
)

// outputTailLines is how many trailing output lines the board shows.
const outputTailLines = 12

// stepLabelWidth keeps the status icons aligned across step rows.
const stepLabelWidth = 8

// StateMsg reports a run state transition.
type StateMsg contracts.RunState

// OutputMsg carries one sanitized step output line.
type OutputMsg struct {
	Step string
	Line string
}

// FinishedMsg carries the terminal run record.
type FinishedMsg struct {
	Record *contracts.RunRecord
}

// RunModel is the Bubble Tea model for the live run view. It renders a
// header with the run identity, one status row per step, and a dimmed
// tail of step output.
type RunModel struct {
	runID  string
	repo   string
	sha    string
	styles *StyleConfig

	events <-chan tea.Msg

	spinner spinner.Model
	state   contracts.RunState
	record  *contracts.RunRecord
	output  []string

	terminalWidth  int
	terminalHeight int
	done           bool
}

// NewRunModel creates a run view fed by the given event channel. The
// channel carries StateMsg, OutputMsg, and finally FinishedMsg.
func NewRunModel(runID, repo, sha string, events <-chan tea.Msg) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := DefaultStyles()
	s.Style = s.Style.Foreground(styles.PendingYellow)

	return RunModel{
		runID:   runID,
		repo:    repo,
		sha:     sha,
		styles:  styles,
		events:  events,
		spinner: s,
		state:   contracts.StateIdle,
	}
}

// Init starts the spinner and the event pump. Required by tea.Model.
func (m RunModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent returns a command that delivers the next run event.
func (m RunModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return nil
		}
		return msg
	}
}

// Update handles messages and updates the model state.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth = msg.Width
		m.terminalHeight = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			if m.done {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateMsg:
		m.state = contracts.RunState(msg)
		return m, m.waitForEvent()

	case OutputMsg:
		m.output = append(m.output, ansi.Strip(msg.Line))
		if len(m.output) > outputTailLines {
			m.output = m.output[len(m.output)-outputTailLines:]
		}
		return m, m.waitForEvent()

	case FinishedMsg:
		m.record = msg.Record
		m.state = msg.Record.State
		m.done = true
	}

	return m, nil
}

// View renders the run board.
func (m RunModel) View() string {
	width := m.terminalWidth
	if width <= 0 {
		width = 80
	}

	var b strings.Builder

	title := fmt.Sprintf("Kiln %s  %s@%s", m.runID, m.repo, shortSHA(m.sha))
	b.WriteString(m.styles.TitleStyle().Render(Truncate(title, width-2, true)))
	b.WriteString("\n\n")

	b.WriteString(m.stepRow(runner.StepBuild))
	b.WriteString("\n")
	b.WriteString(m.stepRow(runner.StepTest))
	b.WriteString("\n")

	if len(m.output) > 0 && !m.done {
		b.WriteString("\n")
		outputStyle := m.styles.OutputStyle()
		for _, line := range m.output {
			b.WriteString(outputStyle.Render(Truncate(line, width-4, true)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.summary())
		b.WriteString("\n")
		b.WriteString(m.styles.HelpStyle().Render("press any key to exit"))
	} else {
		b.WriteString(m.styles.HelpStyle().Render("q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// stepRow renders one step status line from the current run state or,
// once finished, from the recorded step results.
func (m RunModel) stepRow(name string) string {
	label := TruncateAndPad(name, stepLabelWidth, false)

	if m.record != nil {
		if step := m.record.Step(name); step != nil {
			switch step.Status {
			case contracts.StepPassed:
				return m.styles.StepStyle(m.styles.SuccessGreen).Render("✓ " + label)
			case contracts.StepFailed:
				return m.styles.StepStyle(m.styles.FailureRed).Render(fmt.Sprintf("✗ %s (exit %d)", label, step.ExitCode))
			case contracts.StepSkipped:
				return m.styles.StepStyle(m.styles.SkippedGray).Render("- " + label + " (skipped)")
			}
		}
		return m.styles.StepStyle(m.styles.SkippedGray).Render("- " + label)
	}

	active := (name == runner.StepBuild && m.state == contracts.StateBuilding) ||
		(name == runner.StepTest && m.state == contracts.StateTesting)
	if active {
		return m.styles.StepStyle(m.styles.PendingYellow).Render(m.spinner.View() + label)
	}

	if name == runner.StepBuild && (m.state == contracts.StateTesting || m.state == contracts.StateSucceeded) {
		return m.styles.StepStyle(m.styles.SuccessGreen).Render("✓ " + label)
	}
	return m.styles.StepStyle(m.styles.TextSecondary).Render("· " + label)
}

// summary renders the terminal outcome line.
func (m RunModel) summary() string {
	if m.record == nil {
		return ""
	}

	switch m.record.State {
	case contracts.StateSucceeded:
		text := "run succeeded"
		if m.record.Tests != nil {
			text = fmt.Sprintf("run succeeded, %d tests passed", m.record.Tests.Total)
		}
		return m.styles.StepStyle(m.styles.SuccessGreen).Render("✓ " + text)
	default:
		text := "run failed"
		if m.record.Error != "" {
			text = "run failed: " + m.record.Error
		} else if m.record.Tests != nil && m.record.Tests.Failures+m.record.Tests.Errors > 0 {
			text = fmt.Sprintf("run failed, %d of %d tests failed",
				m.record.Tests.Failures+m.record.Tests.Errors, m.record.Tests.Total)
		}
		return m.styles.StepStyle(m.styles.FailureRed).Render("✗ " + text)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
