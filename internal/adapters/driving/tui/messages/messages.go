// Package messages defines the Bubbletea messages of the project editor.
package messages

import (
	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// Target is what the picker is choosing an image for.
type Target struct {
	// Slot and Face locate the member. Both are ignored for the cardback.
	Slot int
	Face domain.Face

	// Cardback is set when picking the shared cardback.
	Cardback bool

	// Query is the query whose results are offered.
	Query domain.SearchQuery
}

// ResultsLoaded carries a resolved query's cards back to the editor.
type ResultsLoaded struct {
	Target Target
	Cards  []domain.CardDocument
	Err    error
}

// ProjectSaved reports the outcome of a save.
type ProjectSaved struct {
	Err error
}
