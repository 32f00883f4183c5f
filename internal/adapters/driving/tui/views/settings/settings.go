// Package settings provides the settings view for the TUI: the literature
// source, the embedding and LLM providers, and the retrieval depth.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/litrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionConnector
	SectionEmbedding
	SectionLLM
)

// Overview rows. Rows before overviewTopK open a selection section.
const (
	overviewConnector = iota
	overviewEmbedding
	overviewLLM
	overviewTopK
	overviewRows
)

// maxTopK caps the retrieval depth the view will step up to.
const maxTopK = 50

// choice is one selectable option in a section.
type choice struct {
	label  string
	detail string
	// needsInput means the field must be filled before saving.
	needsInput bool
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section  Section
	selected int
	editing  bool

	// field holds the API key or directory for the highlighted choice.
	field textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.CharLimit = 1024

	return &View{
		styles:          s,
		settingsService: settingsService,
		field:           field,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.err = nil
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if v.section != SectionOverview {
			v.openOverview(int(v.section) - 1)
		}
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.openOverview(0)
		return v, nil
	}

	if v.section == SectionOverview {
		return v.handleOverviewKeys(msg)
	}
	if v.editing {
		return v.handleFieldKeys(msg)
	}
	return v.handleChoiceKeys(msg)
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case "down", "j":
		v.selected = min(v.selected+1, overviewRows-1)
	case "enter":
		if v.selected < overviewTopK {
			v.openSection(Section(v.selected + 1))
		}
	case "+", "=", "right", "l":
		if v.selected == overviewTopK {
			return v, v.stepTopK(1)
		}
	case "-", "left", "h":
		if v.selected == overviewTopK {
			return v, v.stepTopK(-1)
		}
	}
	return v, nil
}

func (v *View) handleChoiceKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	choices := v.choices(v.section)

	switch msg.String() {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case "down", "j":
		v.selected = min(v.selected+1, len(choices)-1)
	case "tab":
		if v.selected < len(choices) && choices[v.selected].needsInput {
			return v, v.startEditing()
		}
	case "enter":
		if v.selected >= len(choices) {
			return v, nil
		}
		if choices[v.selected].needsInput {
			return v, v.startEditing()
		}
		return v, v.save(v.section, v.selected, "")
	}
	return v, nil
}

func (v *View) handleFieldKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		v.editing = false
		v.field.Blur()
		return v, nil
	case "enter":
		value := strings.TrimSpace(v.field.Value())
		if value == "" {
			v.err = v.emptyFieldError()
			return v, nil
		}
		return v, v.save(v.section, v.selected, value)
	}
	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// openSection switches to a selection section with the current value highlighted.
func (v *View) openSection(section Section) {
	v.section = section
	v.selected = v.currentIndex(section)
	v.stopEditing()
}

// openOverview returns to the overview with row highlighted.
func (v *View) openOverview(row int) {
	v.section = SectionOverview
	v.selected = row
	v.stopEditing()
}

func (v *View) startEditing() tea.Cmd {
	v.editing = true
	v.field.SetValue("")
	if v.section == SectionConnector {
		v.field.EchoMode = textinput.EchoNormal
		v.field.Placeholder = "/path/to/papers"
		if v.settings != nil {
			v.field.SetValue(v.settings.Acquisition.Directory)
		}
	} else {
		v.field.EchoMode = textinput.EchoPassword
		v.field.Placeholder = "Enter API key"
	}
	return v.field.Focus()
}

func (v *View) stopEditing() {
	v.editing = false
	v.field.SetValue("")
	v.field.Blur()
}

func (v *View) emptyFieldError() error {
	if v.section == SectionConnector {
		return ErrDirectoryRequired
	}
	return ErrAPIKeyRequired
}

// choices lists the options of a selection section.
func (v *View) choices(section Section) []choice {
	var out []choice
	switch section {
	case SectionConnector:
		for _, c := range domain.AllConnectorTypes() {
			ch := choice{label: c.Description(), needsInput: c == domain.ConnectorFilesystem}
			if ch.needsInput && v.settings != nil && v.settings.Acquisition.Directory != "" {
				ch.detail = "Directory: " + v.settings.Acquisition.Directory
			}
			out = append(out, ch)
		}
	case SectionEmbedding:
		models := domain.DefaultEmbeddingModels()
		for _, p := range domain.AllEmbeddingProviders() {
			out = append(out, choice{label: p.Description(), detail: "Model: " + models[p], needsInput: p.RequiresAPIKey()})
		}
	case SectionLLM:
		models := domain.DefaultLLMModels()
		for _, p := range domain.AllLLMProviders() {
			out = append(out, choice{label: p.Description(), detail: "Model: " + models[p], needsInput: p.RequiresAPIKey()})
		}
	case SectionOverview:
	}
	return out
}

// currentIndex returns the position of the configured value in a section.
func (v *View) currentIndex(section Section) int {
	if v.settings == nil {
		return 0
	}
	index := -1
	switch section {
	case SectionConnector:
		index = indexOf(domain.AllConnectorTypes(), v.settings.Acquisition.Connector)
	case SectionEmbedding:
		index = indexOf(domain.AllEmbeddingProviders(), v.settings.Embedding.Provider)
	case SectionLLM:
		index = indexOf(domain.AllLLMProviders(), v.settings.LLM.Provider)
	case SectionOverview:
	}
	return max(index, 0)
}

func indexOf[T comparable](values []T, want T) int {
	for i, value := range values {
		if value == want {
			return i
		}
	}
	return -1
}

// save persists the choice at index. value is the directory or API key.
func (v *View) save(section Section, index int, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: persistChoice(svc, section, index, value)}
	}
}

func persistChoice(svc driving.SettingsService, section Section, index int, value string) error {
	switch section {
	case SectionConnector:
		connector := domain.AllConnectorTypes()[index]
		if connector == domain.ConnectorFilesystem {
			if err := svc.Set("acquisition.directory", value); err != nil {
				return err
			}
		}
		return svc.Set("acquisition.connector", string(connector))
	case SectionEmbedding:
		provider := domain.AllEmbeddingProviders()[index]
		return svc.SetEmbeddingProvider(provider, domain.DefaultEmbeddingModels()[provider], value)
	case SectionLLM:
		provider := domain.AllLLMProviders()[index]
		return svc.SetLLMProvider(provider, domain.DefaultLLMModels()[provider], value)
	case SectionOverview:
	}
	return nil
}

// stepTopK moves retrieval.top_k by delta within [1, maxTopK].
func (v *View) stepTopK(delta int) tea.Cmd {
	if v.settings == nil {
		return nil
	}
	next := min(max(v.settings.Retrieval.TopK+delta, 1), maxTopK)
	if next == v.settings.Retrieval.TopK {
		return nil
	}
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: svc.Set("retrieval.top_k", next)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	if v.section == SectionOverview {
		b.WriteString(v.renderOverview())
	} else {
		b.WriteString(v.renderSection())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	rows := []struct{ label, value, status string }{
		overviewConnector: {"Literature Source", v.settings.Acquisition.Connector.Description(), ""},
		overviewEmbedding: {"Embedding Provider", providerValue(v.settings.Embedding.Provider, v.settings.Embedding.Model), v.status(v.settings.Embedding.IsConfigured())},
		overviewLLM:       {"LLM Provider", providerValue(v.settings.LLM.Provider, v.settings.LLM.Model), v.status(v.settings.LLM.IsConfigured())},
		overviewTopK:      {"Results per query", fmt.Sprintf("%d", v.settings.Retrieval.TopK), ""},
	}

	for i, row := range rows {
		line := fmt.Sprintf("%s: %s", row.label, row.value)
		if row.status != "" {
			line += " " + row.status
		}
		b.WriteString(v.renderRow(line, i == v.selected))
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render("Warning: " + err.Error()))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func providerValue(provider domain.AIProvider, model string) string {
	if provider == "" {
		return "Not Set"
	}
	return fmt.Sprintf("%s (%s)", provider.Description(), model)
}

func (v *View) status(configured bool) string {
	if configured {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderSection() string {
	var b strings.Builder

	titles := map[Section]string{
		SectionConnector: "Select Literature Source",
		SectionEmbedding: "Select Embedding Provider",
		SectionLLM:       "Select LLM Provider",
	}
	b.WriteString(v.styles.Subtitle.Render(titles[v.section]))
	b.WriteString("\n\n")

	current := v.currentIndex(v.section)
	choices := v.choices(v.section)
	for i, ch := range choices {
		line := ch.label
		if i == current {
			line += v.styles.Success.Render(" (current)")
		}
		b.WriteString(v.renderRow(line, i == v.selected && !v.editing))
		if ch.detail != "" {
			b.WriteString(v.styles.Muted.Render("    " + ch.detail))
			b.WriteString("\n")
		}
	}

	if v.selected < len(choices) && choices[v.selected].needsInput {
		label := "API Key:"
		if v.section == SectionConnector {
			label = "Directory:"
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(label))
		b.WriteString("\n")
		b.WriteString(v.field.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderRow(line string, selected bool) string {
	if selected {
		return v.styles.Selected.Render("> "+line) + "\n"
	}
	return v.styles.Normal.Render("  "+line) + "\n"
}

func (v *View) renderHelp() string {
	switch {
	case v.section == SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [-/+] results  [esc] back")
	case v.editing:
		return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
	case v.section == SectionConnector:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	default:
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset returns to the overview and clears any input.
func (v *View) Reset() {
	v.openOverview(0)
	v.err = nil
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Editing reports whether the text field has focus.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
