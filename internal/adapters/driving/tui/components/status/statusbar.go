// Package status provides the status line shown under query results.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
)

// State is what the query view is doing.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateAnswering State = "answering"
	StateError     State = "error"
	StateResults   State = "results"
	StateAnswered  State = "answered"
)

// pending labels states that wait on a service.
var pending = map[State]string{
	StateSearching: "Retrieving...",
	StateAnswering: "Waiting for the model...",
}

// Bar shows the query state on the left and key hints on the right.
// It holds no model of its own; the owning view sets its fields.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	resultCount int
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar at its width.
func (s *Bar) View() string {
	left, right := s.describe(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) describe() string {
	if label, ok := pending[s.state]; ok {
		return s.styles.Muted.Render(label)
	}

	switch s.state {
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateAnswered:
		text := s.message
		if text == "" {
			text = fmt.Sprintf("Answered from %d excerpts", s.resultCount)
		}
		return s.styles.Success.Render(text)
	case StateReady, StateResults, StateSearching, StateAnswering:
	}

	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.resultCount > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d chunks", s.resultCount))
	default:
		return s.styles.Muted.Render("Ready")
	}
}

func (s *Bar) hints() string {
	bindings := s.keymap.ShortHelp()
	if s.resultCount > 0 && (s.state == StateResults || s.state == StateAnswered) {
		bindings = s.keymap.ResultsHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage replaces the default text for the current state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetResultCount sets how many chunks are listed.
func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

// ResultCount returns the listed chunk count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the bar to Ready with no message or results.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
