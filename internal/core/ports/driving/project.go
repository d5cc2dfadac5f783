package driving

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// ProjectService builds and edits projects.
type ProjectService interface {
	// Build resolves every query in lines and composes a new project.
	Build(ctx context.Context, name string, lines []domain.ProcessedLine) (*domain.Project, error)

	// SelectImage sets the chosen image for one face of one slot.
	// The identifier must be in the face query's current results.
	// An empty identifier clears the selection.
	SelectImage(ctx context.Context, project *domain.Project, slot int, face domain.Face, identifier string) error

	// SetQuery replaces one face's query, clearing its selection.
	SetQuery(ctx context.Context, project *domain.Project, slot int, face domain.Face, query domain.SearchQuery) error

	// SetCardback sets the shared cardback to one of the CARDBACK results
	// of cardbackQuery. An empty identifier clears it.
	SetCardback(ctx context.Context, project *domain.Project, cardbackQuery, identifier string) error

	// InsertSlot adds a slot for query at position.
	InsertSlot(ctx context.Context, project *domain.Project, position int, query domain.SearchQuery) error

	// RemoveSlot deletes the slot at position.
	RemoveSlot(project *domain.Project, position int) error

	// MoveSlot reorders one slot.
	MoveSlot(project *domain.Project, from, to int) error

	// OrderDetails summarises the project for printing.
	OrderDetails(project *domain.Project, stock domain.Stock, foil bool) (domain.OrderDetails, error)

	// Export groups the project's faces by image for upload.
	Export(ctx context.Context, project *domain.Project, stock domain.Stock, foil bool) (*domain.CardOrder, error)

	// Save persists a project.
	Save(ctx context.Context, project *domain.Project) error

	// Get loads a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all saved projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a saved project.
	Delete(ctx context.Context, id string) error
}
