package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
// Projects are copied on the way in and out so callers cannot mutate
// stored state through shared member pointers.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]domain.Project),
	}
}

// Save stores or updates a project.
func (s *ProjectStore) Save(_ context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = copyProject(project)
	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyProject(&project)
	return &out, nil
}

// Delete removes a project.
func (s *ProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

// List returns all projects, most recently updated first.
func (s *ProjectStore) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for _, project := range s.projects {
		result = append(result, copyProject(&project))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func copyProject(p *domain.Project) domain.Project {
	out := *p
	out.Members = make([]domain.SlotProjectMembers, len(p.Members))
	for i, slot := range p.Members {
		out.Members[i] = domain.SlotProjectMembers{
			Front: copyMember(slot.Front),
			Back:  copyMember(slot.Back),
		}
	}
	return out
}

func copyMember(m *domain.ProjectMember) *domain.ProjectMember {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
