package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
)

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()

	view := NewView(s)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Len(t, view.items, 6)
	assert.Equal(t, 0, view.selected)
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	// Should create default styles
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil)

	cmd := view.Init()

	assert.Nil(t, cmd)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	msg := tea.WindowSizeMsg{Width: 100, Height: 50}
	updated, cmd := view.Update(msg)

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
}

func TestView_Update_KeyMsg_NavigateDown(t *testing.T) {
	view := NewView(nil)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.selected)

	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	for range 10 {
		view.Update(j)
	}

	// Stops at the last item
	assert.Equal(t, len(view.items)-1, view.selected)
}

func TestView_Update_KeyMsg_NavigateUp(t *testing.T) {
	view := NewView(nil)
	view.selected = 3

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, view.selected)

	k := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	view.Update(k)
	view.Update(k)
	view.Update(k)
	assert.Equal(t, 0, view.selected)
}

func TestView_Update_KeyMsg_Enter_ViewChange(t *testing.T) {
	tests := []struct {
		selected int
		want     messages.ViewType
	}{
		{0, messages.ViewSearch},
		{1, messages.ViewAsk},
		{2, messages.ViewStats},
		{3, messages.ViewSettings},
		{4, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil)
			view.selected = tt.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)

			changed, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tt.want, changed.View)
		})
	}
}

func TestView_Update_KeyMsg_Enter_Quit(t *testing.T) {
	view := NewView(nil)
	view.selected = 5

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Update_KeyMsg_Q(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(nil)

	assert.Contains(t, view.View(), "Initialising")
}

func TestView_View_Ready(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	output := view.View()

	assert.Contains(t, output, "litrag")
	assert.Contains(t, output, "Addiction treatment literature")
	for _, item := range view.Items() {
		assert.Contains(t, output, item.Label)
	}
	assert.Contains(t, output, "> ")
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil)

	view.SetDimensions(120, 60)

	assert.Equal(t, 120, view.width)
	assert.Equal(t, 60, view.height)
	assert.True(t, view.ready)
}

func TestView_Selected(t *testing.T) {
	view := NewView(nil)
	view.selected = 2

	assert.Equal(t, 2, view.Selected())
}

func TestMenuItem_Properties(t *testing.T) {
	items := NewView(nil).Items()

	require.Len(t, items, 6)
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Retrieve", "Ask", "Corpus Stats", "Settings", "Help", "Quit"}, labels)
	assert.True(t, items[5].Quit)
	for _, item := range items[:5] {
		assert.False(t, item.Quit)
	}
}

func TestView_Update_DigitJumps(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})

	assert.Equal(t, 2, view.Selected())
	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewStats, changed.View)
}

func TestView_Update_DigitOutOfRange(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})

	assert.Nil(t, cmd)
	assert.Equal(t, 0, view.Selected())
}

func TestView_View_ShowsHints(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(120, 24)

	out := view.View()

	assert.Contains(t, out, "1. Retrieve")
	assert.Contains(t, out, "answer a question from the corpus")
}

func TestView_SetUnavailable(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(120, 24)

	view.SetUnavailable(messages.ViewAsk, "no LLM configured")

	assert.Equal(t, "no LLM configured", view.Items()[1].Unavailable)
	out := view.View()
	assert.Contains(t, out, "(no LLM configured)")
	assert.NotContains(t, out, "answer a question from the corpus")

	view.SetUnavailable(messages.ViewAsk, "")
	assert.Contains(t, view.View(), "answer a question from the corpus")
}
