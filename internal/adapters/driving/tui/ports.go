// Package tui provides an interactive terminal user interface for litrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/litrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retrieval ranks chunks for a query.
	Retrieval driving.RetrievalService

	// Answer generates grounded answers. Nil disables ask mode.
	Answer driving.AnswerService

	// Index reports corpus statistics.
	Index driving.IndexService

	// Settings manages application settings. Nil hides the settings view.
	Settings driving.SettingsService
}

// NewPorts creates a Ports aggregate with the required services.
func NewPorts(retrieval driving.RetrievalService, index driving.IndexService) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Index:     index,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
