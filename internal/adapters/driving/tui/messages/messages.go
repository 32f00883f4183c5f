// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// SearchCompleted carries retrieval hits back to the model.
type SearchCompleted struct {
	Query  string
	Result domain.RetrievalResult
	Err    error
}

// AnswerCompleted carries a generated answer back to the model.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ChunkSelected is sent when a hit is opened for reading.
type ChunkSelected struct {
	Hit domain.ScoredChunk
}

// StatsLoaded carries corpus statistics.
type StatsLoaded struct {
	Stats *driving.CorpusStats
	Err   error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch retrieves chunks for a query.
	ViewSearch
	// ViewAsk answers a question from retrieved chunks.
	ViewAsk
	// ViewChunk shows one chunk in full.
	ViewChunk
	// ViewStats shows corpus and index sizes.
	ViewStats
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewAsk:
		return "ask"
	case ViewChunk:
		return "chunk"
	case ViewStats:
		return "stats"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
