package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"submit", km.Submit, []string{"enter"}},
		{"toggle mode", km.ToggleMode, []string{"tab"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"open", km.Open, []string{"enter"}},
		{"new query", km.NewQuery, []string{"n"}},
		{"refresh", km.Refresh, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	help := DefaultKeyMap().ShortHelp()

	require.Len(t, help, 3)
	assert.Equal(t, "tab", help[1].Help().Key)
}

func TestKeyMap_ResultsHelp(t *testing.T) {
	help := DefaultKeyMap().ResultsHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "n", help[0].Help().Key)
}

func TestKeyMap_FullHelp(t *testing.T) {
	groups := DefaultKeyMap().FullHelp()

	require.Len(t, groups, 3)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, 10, total)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("tab", km.ToggleMode))
	assert.False(t, Matches("x", km.Up))
	assert.False(t, Matches("", km.Quit))
}
