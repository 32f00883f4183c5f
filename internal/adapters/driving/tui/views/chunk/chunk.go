// Package chunk provides the full-text view of a retrieved chunk.
package chunk

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/domain"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// View shows one chunk with its provenance.
type View struct {
	styles *styles.Styles

	hit          *domain.ScoredChunk
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
	notice       string
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetHit displays hit from the top.
func (v *View) SetHit(hit domain.ScoredChunk) {
	v.hit = &hit
	v.scrollOffset = 0
	v.notice = ""
	v.wrapContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chunk view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "c":
		v.copyText()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

func (v *View) copyText() {
	if v.hit == nil {
		return
	}
	if err := writeClipboard(v.hit.Chunk.Text); err != nil {
		v.notice = "Copy failed: " + err.Error()
		return
	}
	v.notice = "Copied chunk text"
}

// wrapContent word-wraps the chunk text to the view width.
func (v *View) wrapContent() {
	if v.hit == nil || strings.TrimSpace(v.hit.Chunk.Text) == "" {
		v.lines = nil
		return
	}
	wrapped := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(v.hit.Chunk.Text)
	v.lines = strings.Split(wrapped, "\n")
}

// visibleLines is the body height left after the header and footer.
func (v *View) visibleLines() int {
	return max(v.height-12, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	if v.hit == nil {
		b.WriteString(v.styles.Title.Render("Chunk"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("No chunk selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	meta := v.hit.Chunk.Metadata
	title := meta.Source
	if title == "" {
		title = "(Untitled)"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n")

	year := "n.d."
	if meta.Year != nil {
		year = fmt.Sprintf("%d", *meta.Year)
	}
	b.WriteString(v.field("Year", year))
	b.WriteString(v.field("Search term", meta.SearchTerm))
	if meta.URL != "" {
		b.WriteString(v.field("URL", meta.URL))
	}
	b.WriteString(v.field("Score", v.styles.FormatScore(v.hit.Score)))
	b.WriteString(v.field("Chunk", fmt.Sprintf("%s (#%d)", v.hit.Chunk.ID, v.hit.Chunk.Ordinal)))
	b.WriteString("\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
		b.WriteString("\n")
	}
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) field(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-12s", label+":")) + " " + v.styles.Normal.Render(value) + "\n"
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [c] copy  [esc] back")
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapContent()
}

// Hit returns the displayed chunk.
func (v *View) Hit() *domain.ScoredChunk {
	return v.hit
}

// ScrollOffset returns the first visible body line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Notice returns the last action message.
func (v *View) Notice() string {
	return v.notice
}
