// Package tui provides an interactive terminal user interface for docrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Query answers questions against the loaded index.
	Query driving.QueryService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(query driving.QueryService) *Ports {
	return &Ports{Query: query}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
