package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/views/chunk"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/views/stats"
	"github.com/custodia-labs/litrag/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// menuView is the main navigation menu.
	menuView *menu.View

	// searchView handles retrieve and ask queries.
	searchView *search.View

	// chunkView shows one retrieved chunk in full.
	chunkView *chunk.View

	// statsView shows corpus and index sizes.
	statsView *stats.View

	// settingsView is the settings configuration view component.
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	searchView := search.NewView(s, nil, ports.Retrieval, ports.Answer)
	if ports.Settings != nil {
		if current, err := ports.Settings.Get(); err == nil && current != nil {
			searchView.SetTopK(current.Retrieval.TopK)
		}
	}

	menuView := menu.NewView(s)
	if ports.Answer == nil {
		menuView.SetUnavailable(messages.ViewAsk, "no LLM configured")
	}

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menuView,
		searchView:   searchView,
		chunkView:    chunk.NewView(s),
		statsView:    stats.NewView(s, ports.Index),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its service-backed views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("litrag - Literature Search"),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.SearchCompleted, messages.AnswerCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ChunkSelected:
		a.chunkView.SetHit(msg.Hit)
		a.currentView = messages.ViewChunk
		return a, nil

	case messages.StatsLoaded:
		a.statsView, cmd = a.statsView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.changeView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.SettingsLoaded:
		if msg.Err == nil && msg.Settings != nil {
			a.searchView.SetTopK(msg.Settings.Retrieval.TopK)
		}
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch, messages.ViewAsk:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewChunk:
		a.chunkView, cmd = a.chunkView.Update(msg)
	case messages.ViewStats:
		a.statsView, cmd = a.statsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// changeView switches the active view and runs its initialisation.
func (a *App) changeView(view messages.ViewType) tea.Cmd {
	previous := a.currentView
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		// Returning from a chunk keeps the results in place.
		if previous == messages.ViewChunk {
			return nil
		}
		a.searchView.Reset()
		a.searchView.SetMode(search.ModeRetrieve)
		return a.searchView.Init()

	case messages.ViewAsk:
		a.currentView = messages.ViewSearch
		a.searchView.Reset()
		if a.ports.Answer == nil {
			a.searchView.SetMode(search.ModeRetrieve)
			a.searchView.Update(messages.ErrorOccurred{Err: search.ErrNoAnswerService})
			return a.searchView.Init()
		}
		a.searchView.SetMode(search.ModeAsk)
		return a.searchView.Init()

	case messages.ViewStats:
		return a.statsView.Init()

	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()

	case messages.ViewMenu, messages.ViewChunk, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch, messages.ViewAsk:
		return a.searchView.View()
	case messages.ViewChunk:
		return a.chunkView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Query:
  (type)      Enter a query or question
  tab         Toggle retrieve / ask
  enter       Submit

Results:
  j/k, ↑/↓    Navigate hits
  enter       Read the full chunk
  n           New query

Chunk:
  j/k, g/G    Scroll
  c           Copy text

Corpus Stats:
  r           Refresh

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Query returns the current query input.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the listed hits.
func (a *App) Results() domain.RetrievalResult {
	return a.searchView.Results()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.chunkView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
