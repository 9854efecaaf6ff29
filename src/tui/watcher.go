package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"kiln-agent/src/contracts"
)

// Watcher adapts run progress callbacks into the event channel the run
// view consumes. The channel is buffered so a slow terminal cannot stall
// the run itself.
type Watcher struct {
	events chan tea.Msg
}

// NewWatcher creates a watcher.
func NewWatcher() *Watcher {
	return &Watcher{events: make(chan tea.Msg, 256)}
}

// Events returns the channel to feed NewRunModel with.
func (w *Watcher) Events() <-chan tea.Msg {
	return w.events
}

// OnState forwards a run state transition.
func (w *Watcher) OnState(state contracts.RunState) {
	w.send(StateMsg(state))
}

// OnOutput forwards one step output line.
func (w *Watcher) OnOutput(step, line string) {
	w.send(OutputMsg{Step: step, Line: line})
}

// Finish forwards the terminal run record and closes the channel. Unlike
// progress events the terminal record is never dropped. The run is over,
// so no other sender remains; stale buffered progress events are discarded
// first, which keeps Finish from blocking when the viewer quit early and
// nothing drains the channel anymore.
func (w *Watcher) Finish(record *contracts.RunRecord) {
	for {
		select {
		case <-w.events:
		default:
			w.events <- FinishedMsg{Record: record}
			close(w.events)
			return
		}
	}
}

// send drops events instead of blocking when the view lags behind.
func (w *Watcher) send(msg tea.Msg) {
	select {
	case w.events <- msg:
	default:
	}
}
