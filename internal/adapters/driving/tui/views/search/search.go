// Package search provides the query view for the TUI. It retrieves ranked
// chunks or, in ask mode, asks the language model to answer from them.
package search

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Mode selects what a submitted query does.
type Mode int

const (
	// ModeRetrieve lists the nearest chunks.
	ModeRetrieve Mode = iota
	// ModeAsk generates an answer grounded in the nearest chunks.
	ModeAsk
)

// String returns the mode label shown in the header.
func (m Mode) String() string {
	if m == ModeAsk {
		return "ask"
	}
	return "retrieve"
}

const defaultTopK = 5

// View represents the query view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	answers   driving.AnswerService
	ctx       context.Context

	mode       Mode
	topK       int
	answer     *domain.Answer
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing, false = navigating results
}

// NewView creates a new query view. answers may be nil, in which case ask
// mode is unavailable.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	answers driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		answers:    answers,
		ctx:        context.Background(),
		topK:       defaultTopK,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the query view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		switch msg.Type { //nolint:exhaustive // only submit and mode toggle are special
		case tea.KeyEnter:
			return v, v.submit()
		case tea.KeyTab:
			v.toggleMode()
			return v, nil
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.Type { //nolint:exhaustive // navigation keys only
	case tea.KeyEnter:
		hit := v.list.SelectedResult()
		if hit == nil {
			return v, nil
		}
		selected := *hit
		return v, func() tea.Msg {
			return messages.ChunkSelected{Hit: selected}
		}
	case tea.KeyUp:
		v.list.MoveUp()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		return v, nil
	}

	switch msg.String() {
	case "k":
		v.list.MoveUp()
	case "j":
		v.list.MoveDown()
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

// submit starts a retrieval or an answer for the current input.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}

	v.err = nil
	v.answer = nil
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()

	if v.mode == ModeAsk {
		v.statusbar.SetState(status.StateAnswering)
		return v.performAsk(query)
	}
	v.statusbar.SetState(status.StateSearching)
	return v.performSearch(query)
}

// toggleMode switches between retrieve and ask.
func (v *View) toggleMode() {
	if v.mode == ModeAsk {
		v.SetMode(ModeRetrieve)
		return
	}
	if v.answers == nil {
		v.statusbar.SetMessage("No LLM configured; run settings llm")
		return
	}
	v.SetMode(ModeAsk)
}

// performSearch retrieves the nearest chunks for query.
func (v *View) performSearch(query string) tea.Cmd {
	ctx, retrieval, k := v.ctx, v.retrieval, v.topK
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		result, err := retrieval.Search(ctx, query, k)
		return messages.SearchCompleted{Query: query, Result: result, Err: err}
	}
}

// performAsk generates an answer for question.
func (v *View) performAsk(question string) tea.Cmd {
	ctx, answers, k := v.ctx, v.answers, v.topK
	return func() tea.Msg {
		if answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := answers.Ask(ctx, question, k)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Result)
	v.statusbar.SetResultCount(len(msg.Result))
	if len(msg.Result) == 0 {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("No matching chunks")
		v.focusInput = true
		v.input.Focus()
		return
	}
	v.statusbar.SetState(status.StateResults)
	v.focusInput = false
	v.input.Blur()
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Answer == nil {
		v.setError(ErrNoAnswer)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.focusInput = false
	v.input.Blur()
	v.list.SetResults(msg.Answer.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetResultCount(len(msg.Answer.Sources))
	if msg.Answer.Model != "" {
		v.statusbar.SetMessage("Answered by " + msg.Answer.Model)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

// View renders the query view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)

	header := v.styles.Title.Render("litrag") + "  " + v.styles.Mode.Render("["+v.mode.String()+"]")
	sections = append(sections, header, "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		answer := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text)
		sections = append(sections, answer, "", v.styles.Subtitle.Render("Sources"))
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// SetMode selects retrieve or ask and updates the prompt.
func (v *View) SetMode(mode Mode) {
	v.mode = mode
	if mode == ModeAsk {
		v.input.SetPrompt("Question", "Ask about the literature...")
	} else {
		v.input.SetPrompt("Query", "Enter a query...")
	}
	v.statusbar.SetMessage("")
}

// Mode returns the active mode.
func (v *View) Mode() Mode {
	return v.mode
}

// SetTopK sets how many chunks each query retrieves. Non-positive values
// are ignored.
func (v *View) SetTopK(k int) {
	if k > 0 {
		v.topK = k
	}
}

// TopK returns the retrieval depth.
func (v *View) TopK() int {
	return v.topK
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the listed hits.
func (v *View) Results() domain.RetrievalResult {
	return v.list.Results()
}

// Answer returns the last generated answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// SelectedIndex returns the index of the selected hit.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Reset returns the view to input mode with no results. The mode is kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
