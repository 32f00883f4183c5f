// Package stats provides the corpus statistics view for the TUI.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// View shows chunk store and index sizes.
type View struct {
	styles       *styles.Styles
	indexService driving.IndexService
	ctx          context.Context

	stats   *driving.CorpusStats
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new stats view.
func NewView(s *styles.Styles, indexService driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		indexService: indexService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the statistics.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	ctx, svc := v.ctx, v.indexService
	return func() tea.Msg {
		if svc == nil {
			return messages.StatsLoaded{Err: ErrNoIndexService}
		}
		stats, err := svc.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StatsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.stats = msg.Stats
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.load()
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the stats view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Corpus Stats"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.stats == nil:
		b.WriteString(v.styles.Muted.Render("No statistics available"))
	default:
		b.WriteString(v.field("Chunks", fmt.Sprintf("%d", v.stats.Chunks)))
		b.WriteString(v.field("Indexed", fmt.Sprintf("%d", v.stats.Indexed)))
		b.WriteString(v.field("Chunk file", v.stats.ChunkFile))
		b.WriteString(v.field("Embedding", v.stats.EmbeddingModel))
		if v.stats.IndexModel != "" {
			b.WriteString(v.field("Index model", v.stats.IndexModel))
		}
		switch {
		case v.stats.Chunks == 0:
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("The corpus is empty. Run litrag ingest to collect papers."))
		case v.stats.ModelMismatch():
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("The index was built with another model. Run litrag index to rebuild it."))
		case v.stats.IsStale():
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("The index is stale. Run litrag index to rebuild it."))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))
	return b.String()
}

func (v *View) field(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-12s", label+":")) + " " + v.styles.Normal.Render(value) + "\n"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the last loaded statistics.
func (v *View) Stats() *driving.CorpusStats {
	return v.stats
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
