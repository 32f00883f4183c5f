// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it switches to View, or quits when Quit is set.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool

	// Unavailable, when set, is shown next to the label. The item stays selectable
	// so the target view can explain what is missing.
	Unavailable string
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Retrieve", Hint: "list the chunks closest to a query", View: messages.ViewSearch},
			{Label: "Ask", Hint: "answer a question from the corpus", View: messages.ViewAsk},
			{Label: "Corpus Stats", Hint: "chunk and index sizes", View: messages.ViewStats},
			{Label: "Settings", Hint: "literature source and providers", View: messages.ViewSettings},
			{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.choose(v.selected)
		case "q":
			return v, tea.Quit
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(v.items) {
				v.selected = n - 1
				return v, v.choose(v.selected)
			}
		}
	}

	return v, nil
}

func (v *View) choose(index int) tea.Cmd {
	item := v.items[index]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("litrag"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Addiction treatment literature"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := strconv.Itoa(i+1) + ". " + item.Label
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		switch {
		case item.Unavailable != "":
			b.WriteString("  " + v.styles.Warning.Render("("+item.Unavailable+")"))
		case item.Hint != "":
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-6] Jump  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetUnavailable marks the item for view with a reason, or clears it when
// reason is empty.
func (v *View) SetUnavailable(view messages.ViewType, reason string) {
	for i := range v.items {
		if !v.items[i].Quit && v.items[i].View == view {
			v.items[i].Unavailable = reason
		}
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
