package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	result domain.RetrievalResult
	err    error
	query  string
	k      int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ []float32, k int) (domain.RetrievalResult, error) {
	m.k = k
	return m.result, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) (domain.RetrievalResult, error) {
	m.query = query
	m.k = k
	return m.result, m.err
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
	k        int
}

func (m *mockAnswerService) Ask(_ context.Context, question string, k int) (*domain.Answer, error) {
	m.question = question
	m.k = k
	return m.answer, m.err
}

func testHits() domain.RetrievalResult {
	return domain.RetrievalResult{
		{
			Chunk: domain.Chunk{
				ID:   "c1",
				Text: "Methadone maintenance improved retention at twelve months.",
				Metadata: domain.ChunkMetadata{
					SearchTerm: "methadone",
					Source:     "Retention in Methadone Programmes",
					Year:       domain.IntPtr(2019),
				},
			},
			Score: 0.91,
		},
		{
			Chunk: domain.Chunk{
				ID:   "c2",
				Text: "Contingency management reduced stimulant use.",
				Metadata: domain.ChunkMetadata{
					SearchTerm: "contingency management",
					Source:     "Incentives for Abstinence",
				},
			},
			Score: 0.74,
		},
	}
}

func readyView(r *mockRetrievalService, a *mockAnswerService) *View {
	var (
		retrieval driving.RetrievalService
		answers   driving.AnswerService
	)
	if r != nil {
		retrieval = r
	}
	if a != nil {
		answers = a
	}
	view := NewView(nil, nil, retrieval, answers)
	view.SetDimensions(100, 40)
	return view
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), &mockRetrievalService{}, nil)

	require.NotNil(t, view)
	assert.False(t, view.Ready())
	assert.Equal(t, "", view.Query())
	assert.True(t, view.InputFocused())
	assert.Equal(t, ModeRetrieve, view.Mode())
	assert.Equal(t, defaultTopK, view.TopK())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
}

func TestView_WithContext(t *testing.T) {
	view := NewView(nil, nil, nil, nil)
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, view, view.WithContext(ctx))
	assert.Equal(t, ctx, view.ctx)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	assert.NotNil(t, view.Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	view, cmd := view.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, view.Ready())
	assert.Equal(t, 120, view.Width())
	assert.Equal(t, 40, view.Height())
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	assert.Equal(t, "Initialising...", view.View())
}

func TestView_View_ShowsMode(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)

	out := view.View()

	assert.Contains(t, out, "litrag")
	assert.Contains(t, out, "[retrieve]")
	assert.Contains(t, out, "Query")
}

func TestView_Typing(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("opioid")})

	assert.Equal(t, "opioid", view.Query())
}

func TestView_Submit_EmptyQuery(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.SetQuery("   ")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, view.InputFocused())
}

func TestView_Submit_Retrieve(t *testing.T) {
	retrieval := &mockRetrievalService{result: testHits()}
	view := readyView(retrieval, nil)
	view.SetTopK(3)
	view.SetQuery(" methadone retention ")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, view.InputFocused())

	msg := cmd()
	completed, ok := msg.(messages.SearchCompleted)
	require.True(t, ok)
	assert.Equal(t, "methadone retention", completed.Query)
	assert.Len(t, completed.Result, 2)
	assert.Equal(t, "methadone retention", retrieval.query)
	assert.Equal(t, 3, retrieval.k)

	view, _ = view.Update(completed)
	assert.Len(t, view.Results(), 2)
	assert.NoError(t, view.Err())
	assert.Contains(t, view.View(), "Retention in Methadone Programmes")
}

func TestView_Submit_NoRetrievalService(t *testing.T) {
	view := readyView(nil, nil)
	view.SetQuery("naloxone")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoRetrievalService)
}

func TestView_SearchCompleted_Empty(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.focusInput = false

	view, _ = view.Update(messages.SearchCompleted{Query: "x"})

	assert.Empty(t, view.Results())
	assert.Equal(t, "No matching chunks", view.StatusMessage())
	assert.True(t, view.InputFocused())
}

func TestView_SearchCompleted_Error(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.focusInput = false

	view, _ = view.Update(messages.SearchCompleted{Err: domain.ErrEmptyCorpus})

	assert.ErrorIs(t, view.Err(), domain.ErrEmptyCorpus)
	assert.True(t, view.InputFocused())
	assert.Contains(t, view.View(), "Error:")
}

func TestView_ErrorOccurred(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	boom := errors.New("boom")

	view, _ = view.Update(messages.ErrorOccurred{Err: boom})

	assert.ErrorIs(t, view.Err(), boom)
	assert.Equal(t, "boom", view.StatusMessage())
}

func TestView_ToggleMode(t *testing.T) {
	view := readyView(&mockRetrievalService{}, &mockAnswerService{})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ModeAsk, view.Mode())
	assert.Contains(t, view.View(), "[ask]")
	assert.Contains(t, view.View(), "Question")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ModeRetrieve, view.Mode())
}

func TestView_ToggleMode_NoAnswerService(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, ModeRetrieve, view.Mode())
	assert.Contains(t, view.StatusMessage(), "No LLM configured")
}

func TestView_Submit_Ask(t *testing.T) {
	answers := &mockAnswerService{answer: &domain.Answer{
		Question: "Does methadone help?",
		Text:     "Methadone improves retention.",
		Sources:  testHits()[:1],
		Model:    "llama3.2",
	}}
	view := readyView(&mockRetrievalService{}, answers)
	view.SetMode(ModeAsk)
	view.SetQuery("Does methadone help?")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	completed, ok := cmd().(messages.AnswerCompleted)
	require.True(t, ok)
	assert.Equal(t, "Does methadone help?", answers.question)
	assert.Equal(t, defaultTopK, answers.k)

	view, _ = view.Update(completed)
	require.NotNil(t, view.Answer())
	assert.Len(t, view.Results(), 1)
	assert.Equal(t, "Answered by llama3.2", view.StatusMessage())

	out := view.View()
	assert.Contains(t, out, "Methadone improves retention.")
	assert.Contains(t, out, "Sources")
}

func TestView_AnswerCompleted_NilAnswer(t *testing.T) {
	view := readyView(&mockRetrievalService{}, &mockAnswerService{})

	view, _ = view.Update(messages.AnswerCompleted{Question: "q"})

	assert.ErrorIs(t, view.Err(), ErrNoAnswer)
}

func TestView_AnswerCompleted_Error(t *testing.T) {
	view := readyView(&mockRetrievalService{}, &mockAnswerService{})

	view, _ = view.Update(messages.AnswerCompleted{Err: domain.ErrLLMUnavailable})

	assert.ErrorIs(t, view.Err(), domain.ErrLLMUnavailable)
	assert.Nil(t, view.Answer())
}

func TestView_ResultsMode_OpenChunk(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.focusInput = false
	view, _ = view.Update(messages.SearchCompleted{Result: testHits()})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, view.SelectedIndex())

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	selected, ok := cmd().(messages.ChunkSelected)
	require.True(t, ok)
	assert.Equal(t, "c2", selected.Hit.Chunk.ID)
}

func TestView_ResultsMode_Navigation(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.focusInput = false
	view, _ = view.Update(messages.SearchCompleted{Result: testHits()})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.SelectedIndex())
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_ResultsMode_EnterWithoutResults(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.focusInput = false

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_ResultsMode_NewQuery(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)
	view.SetQuery("old query")
	view.focusInput = false

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	assert.True(t, view.InputFocused())
	assert.Equal(t, "", view.Query())
}

func TestView_Esc_ReturnsToMenu(t *testing.T) {
	view := readyView(&mockRetrievalService{}, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_SetTopK_IgnoresNonPositive(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	view.SetTopK(0)
	assert.Equal(t, defaultTopK, view.TopK())

	view.SetTopK(8)
	assert.Equal(t, 8, view.TopK())
}

func TestView_Reset_KeepsMode(t *testing.T) {
	view := readyView(&mockRetrievalService{}, &mockAnswerService{})
	view.SetMode(ModeAsk)
	view.SetQuery("question")
	view.focusInput = false
	view, _ = view.Update(messages.SearchCompleted{Result: testHits()})

	view.Reset()

	assert.Equal(t, ModeAsk, view.Mode())
	assert.True(t, view.InputFocused())
	assert.Equal(t, "", view.Query())
	assert.Empty(t, view.Results())
	assert.Nil(t, view.Answer())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "retrieve", ModeRetrieve.String())
	assert.Equal(t, "ask", ModeAsk.String())
}
