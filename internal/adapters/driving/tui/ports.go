// Package tui provides the interactive project editor, a Bubbletea program
// for choosing the image of each face and the shared cardback.
package tui

import (
	"errors"

	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
)

// ErrMissingProjectService is returned when the project service is not provided.
var ErrMissingProjectService = errors.New("tui: project service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports are the services the editor drives.
type Ports struct {
	Projects driving.ProjectService
	Search   driving.SearchService

	// Cards names the listed identifiers. Optional.
	Cards driven.CardStore
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Projects == nil {
		return ErrMissingProjectService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
