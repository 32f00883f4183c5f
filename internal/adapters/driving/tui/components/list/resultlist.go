// Package list renders ranked retrieval hits for the TUI.
package list

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/domain"
)

// ResultList displays retrieval hits in a navigable list.
type ResultList struct {
	results  domain.RetrievalResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// linesPerHit is the height of one rendered hit.
const linesPerHit = 3

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	start, end := r.window()
	header := fmt.Sprintf("Results (%d)", len(r.results))
	if end-start < len(r.results) {
		header += fmt.Sprintf(" · %d-%d shown", start+1, end)
	}

	lines := make([]string, 0, end-start+2)
	lines = append(lines, r.styles.Subtitle.Render(header), "")
	for i := start; i < end; i++ {
		lines = append(lines, r.renderHit(i))
	}
	return strings.Join(lines, "\n")
}

// window returns the range of hits that fit, keeping the selection visible.
func (r *ResultList) window() (start, end int) {
	visible := max((r.height-4)/linesPerHit, 1)
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

// renderHit formats one hit: rank, source and score, then year and search
// term, then a one-line preview of the chunk text.
func (r *ResultList) renderHit(index int) string {
	hit := &r.results[index]
	meta := hit.Chunk.Metadata

	source := meta.Source
	if source == "" {
		source = "(Untitled)"
	}
	titleWidth := max(r.width-24, 10)
	heading := fmt.Sprintf("%2d. %-*s  ", index+1, titleWidth, truncate(source, titleWidth))

	var first string
	if index == r.selected {
		first = r.styles.Selected.Render(fmt.Sprintf("> %s%.3f", heading, hit.Score))
	} else {
		first = r.styles.Normal.Render("  "+heading) + r.styles.FormatScore(hit.Score)
	}

	year := "n.d."
	if meta.Year != nil {
		year = strconv.Itoa(*meta.Year)
	}
	second := r.styles.Subtitle.Render(fmt.Sprintf("      %s · %s", year, meta.SearchTerm))

	preview := strings.Join(strings.Fields(hit.Chunk.Text), " ")
	third := r.styles.Muted.Render("      " + truncate(preview, max(r.width-8, 20)))

	return first + "\n" + second + "\n" + third
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results domain.RetrievalResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() domain.RetrievalResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected hit, or nil if none.
func (r *ResultList) SelectedResult() *domain.ScoredChunk {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
