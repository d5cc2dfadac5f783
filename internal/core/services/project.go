package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// DefaultProjectName is used when a project is built without a name.
const DefaultProjectName = "Untitled project"

// ProjectService builds projects and applies editor operations to them.
// Projects are single-owner values; the service does not lock them.
type ProjectService struct {
	search driving.SearchService
	dfc    *DFCResolver
	store  driven.ProjectStore
	cards  driven.CardStore
	now    func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(search driving.SearchService, dfc *DFCResolver) *ProjectService {
	return &ProjectService{
		search: search,
		dfc:    dfc,
		now:    time.Now,
	}
}

// SetProjectStore sets the store used by Save, Get, List and Delete.
func (s *ProjectService) SetProjectStore(store driven.ProjectStore) {
	s.store = store
}

// SetCardStore sets the store used to hydrate results. Without one, DFC
// pairs are looked up by query text.
func (s *ProjectService) SetCardStore(store driven.CardStore) {
	s.cards = store
}

// Build resolves every query in lines, then lays the project out.
// DFC backs synthesised by the layout are resolved as well so that every
// face has results ready for selection.
func (s *ProjectService) Build(ctx context.Context, name string, lines []domain.ProcessedLine) (*domain.Project, error) {
	if s.search == nil {
		return nil, domain.ErrNotImplemented
	}

	var queries []domain.SearchQuery
	for _, line := range lines {
		if line.Front != nil {
			queries = append(queries, *line.Front)
		}
		if line.Back != nil {
			queries = append(queries, *line.Back)
		}
	}
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}

	results, err := s.search.ResolveAll(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("build project: %w", err)
	}

	project := BuildProject(lines, results, s.cardNames(ctx, lines, results), s.dfc)
	if _, err := s.search.ResolveAll(ctx, project.Queries()); err != nil {
		return nil, fmt.Errorf("build project: resolve DFC backs: %w", err)
	}

	if name == "" {
		name = DefaultProjectName
	}
	now := s.now()
	project.ID = uuid.NewString()
	project.Name = name
	project.CreatedAt = now
	project.UpdatedAt = now

	logger.Info("Built project %q: %d slots from %d lines", name, project.Len(), len(lines))
	return project, nil
}

// SelectImage sets the chosen image for one face of one slot.
func (s *ProjectService) SelectImage(
	ctx context.Context, project *domain.Project, slot int, face domain.Face, identifier string,
) error {
	member, err := s.member(project, slot, face)
	if err != nil {
		return err
	}
	if identifier != "" {
		if err := s.requireResult(ctx, member.Query, identifier); err != nil {
			return err
		}
	}
	member.SelectedImage = identifier
	project.UpdatedAt = s.now()
	return nil
}

// SetQuery replaces one face's query and clears its selection.
// An empty back query removes the back member.
func (s *ProjectService) SetQuery(
	ctx context.Context, project *domain.Project, slot int, face domain.Face, query domain.SearchQuery,
) error {
	if !face.IsValid() {
		return fmt.Errorf("%w: unknown face %q", domain.ErrValidation, face)
	}
	if err := query.Validate(); err != nil {
		return err
	}
	target, err := project.Slot(slot)
	if err != nil {
		return err
	}
	if _, err := s.resolve(ctx, query); err != nil {
		return err
	}

	member := &domain.ProjectMember{Query: query}
	switch {
	case face == domain.FaceFront:
		target.Front = member
	case query.IsEmpty():
		target.Back = nil
	default:
		target.Back = member
	}
	project.UpdatedAt = s.now()
	return nil
}

// SetCardback sets the shared cardback.
func (s *ProjectService) SetCardback(ctx context.Context, project *domain.Project, cardbackQuery, identifier string) error {
	if identifier != "" {
		query := domain.SearchQuery{Query: cardbackQuery, CardType: domain.CardTypeCardback}
		if err := s.requireResult(ctx, query, identifier); err != nil {
			return err
		}
	}
	project.Cardback = identifier
	project.UpdatedAt = s.now()
	return nil
}

// InsertSlot lays out a single-copy line for query at position, including
// any DFC back it pairs with.
func (s *ProjectService) InsertSlot(ctx context.Context, project *domain.Project, position int, query domain.SearchQuery) error {
	if err := query.Validate(); err != nil {
		return err
	}
	if position < 0 || position > project.Len() {
		return fmt.Errorf("%w: insert position %d out of range [0,%d]", domain.ErrValidation, position, project.Len())
	}
	if s.search == nil {
		return domain.ErrNotImplemented
	}

	results, err := s.search.ResolveAll(ctx, []domain.SearchQuery{query})
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	line := []domain.ProcessedLine{{Quantity: 1, Front: &query}}
	built := BuildProject(line, results, s.cardNames(ctx, line, results), s.dfc)
	if built.Len() != 1 {
		return fmt.Errorf("%w: query %q produced no slot", domain.ErrValidation, query.Query)
	}
	if back := built.Members[0].Back; back != nil {
		if _, err := s.resolve(ctx, back.Query); err != nil {
			return err
		}
	}

	if err := project.InsertSlot(position, built.Members[0]); err != nil {
		return err
	}
	project.UpdatedAt = s.now()
	return nil
}

// RemoveSlot deletes the slot at position.
func (s *ProjectService) RemoveSlot(project *domain.Project, position int) error {
	if err := project.RemoveSlot(position); err != nil {
		return err
	}
	project.UpdatedAt = s.now()
	return nil
}

// MoveSlot reorders one slot.
func (s *ProjectService) MoveSlot(project *domain.Project, from, to int) error {
	if err := project.MoveSlot(from, to); err != nil {
		return err
	}
	project.UpdatedAt = s.now()
	return nil
}

// OrderDetails summarises the project for printing.
func (s *ProjectService) OrderDetails(project *domain.Project, stock domain.Stock, foil bool) (domain.OrderDetails, error) {
	if !stock.IsValid() {
		return domain.OrderDetails{}, fmt.Errorf("%w: unknown stock %q", domain.ErrValidation, stock)
	}
	bracket, err := domain.BracketFor(project.Len())
	if err != nil {
		return domain.OrderDetails{}, err
	}
	return domain.OrderDetails{
		Quantity: project.Len(),
		Bracket:  bracket,
		Stock:    stock,
		Foil:     foil,
	}, nil
}

// Export groups the project's faces by image for upload. Faces without a
// selection use their query's first result, so every query is resolved
// first. Image names are filled from the card store when one is set.
func (s *ProjectService) Export(
	ctx context.Context, project *domain.Project, stock domain.Stock, foil bool,
) (*domain.CardOrder, error) {
	details, err := s.OrderDetails(project, stock, foil)
	if err != nil {
		return nil, err
	}
	if s.search == nil {
		return nil, domain.ErrNotImplemented
	}
	results, err := s.search.ResolveAll(ctx, project.Queries())
	if err != nil {
		return nil, fmt.Errorf("export project: %w", err)
	}

	order := domain.NewCardOrder(project, details, results)
	s.nameImages(ctx, order.Fronts)
	s.nameImages(ctx, order.Backs)

	if !order.Complete() {
		logger.Warn("Project %q has %d slots without a front and %d without a back",
			project.Name, len(order.MissingFronts), len(order.MissingBacks))
	}
	return order, nil
}

func (s *ProjectService) nameImages(ctx context.Context, images []domain.CardImage) {
	if s.cards == nil || len(images) == 0 {
		return
	}
	ids := make([]string, len(images))
	for i := range images {
		ids[i] = images[i].Identifier
	}
	docs, err := s.cards.GetCards(ctx, ids)
	if err != nil {
		logger.Warn("Cannot name %d exported images: %v", len(ids), err)
		return
	}
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		names[doc.Identifier] = doc.Name
	}
	for i := range images {
		images[i].Name = names[images[i].Identifier]
	}
}

// Save persists a project, assigning an ID when it has none.
func (s *ProjectService) Save(ctx context.Context, project *domain.Project) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if project == nil {
		return fmt.Errorf("%w: nil project", domain.ErrValidation)
	}
	for i := range project.Members {
		if project.Members[i].Front == nil {
			return fmt.Errorf("%w: slot %d has no front member", domain.ErrValidation, i)
		}
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = s.now()
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}
	return s.store.Save(ctx, project)
}

// Get loads a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.Get(ctx, id)
}

// List returns all saved projects, most recently updated first.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}

// Delete removes a saved project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	return s.store.Delete(ctx, id)
}

// cardNames hydrates the CARD results of every front that may be DFC paired
// and keeps the fronts whose results all carry the same card name.
func (s *ProjectService) cardNames(ctx context.Context, lines []domain.ProcessedLine, results domain.SearchResults) CardNames {
	if s.cards == nil {
		return nil
	}
	names := CardNames{}
	for _, line := range lines {
		if line.Front == nil || line.Back != nil || line.Front.IsEmpty() {
			continue
		}
		text := line.Front.Query
		if _, done := names[text]; done {
			continue
		}
		ids := results[text].Card
		if len(ids) == 0 {
			continue
		}
		docs, err := s.cards.GetCards(ctx, ids)
		if err != nil {
			logger.Warn("Cannot read cards for %q, not pairing: %v", text, err)
			continue
		}
		if len(docs) != len(ids) {
			logger.Debug("Only %d of %d cards for %q are known, not pairing", len(docs), len(ids), text)
			continue
		}
		if name, ok := sharedName(docs); ok {
			names[text] = name
		} else {
			logger.Debug("Results for %q span several card names, not pairing", text)
		}
	}
	return names
}

// sharedName returns the name every document carries.
func sharedName(docs []domain.CardDocument) (string, bool) {
	if len(docs) == 0 {
		return "", false
	}
	name := docs[0].Name
	for _, doc := range docs[1:] {
		if doc.Name != name {
			return "", false
		}
	}
	return name, name != ""
}

func (s *ProjectService) member(project *domain.Project, slot int, face domain.Face) (*domain.ProjectMember, error) {
	if !face.IsValid() {
		return nil, fmt.Errorf("%w: unknown face %q", domain.ErrValidation, face)
	}
	target, err := project.Slot(slot)
	if err != nil {
		return nil, err
	}
	member := target.Member(face)
	if member == nil {
		return nil, fmt.Errorf("%w: slot %d has no %s member", domain.ErrValidation, slot, face)
	}
	return member, nil
}

func (s *ProjectService) resolve(ctx context.Context, query domain.SearchQuery) (domain.Resolution, error) {
	if s.search == nil {
		return domain.Resolution{}, domain.ErrNotImplemented
	}
	return s.search.Resolve(ctx, query)
}

// requireResult fails unless identifier is in the current results of query.
func (s *ProjectService) requireResult(ctx context.Context, query domain.SearchQuery, identifier string) error {
	res, err := s.resolve(ctx, query)
	if err != nil {
		return err
	}
	for _, id := range res.Identifiers {
		if id == identifier {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not a result of %s query %q", domain.ErrValidation, identifier, query.CardType, query.Query)
}
