package domain

import (
	"fmt"
	"time"
)

// Face is one side of a physical card slot.
type Face string

// Available faces.
const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// IsValid returns true if the face is recognised.
func (f Face) IsValid() bool {
	return f == FaceFront || f == FaceBack
}

// ProcessedLine is one user-authored input line after parsing.
type ProcessedLine struct {
	// Quantity is how many slots the line expands to.
	Quantity int

	// Front is the front query, or nil.
	Front *SearchQuery

	// Back is the explicit back query, or nil.
	Back *SearchQuery
}

// ProjectMember is one face's query and the image chosen for it.
type ProjectMember struct {
	// Query is the face's current query.
	Query SearchQuery `json:"query"`

	// SelectedImage is the chosen identifier, or "" when unset.
	// When set it must be in the query's current result set.
	SelectedImage string `json:"selected_image,omitempty"`
}

// SlotProjectMembers is one physical card slot.
// A slot with a nil Front never appears in a finalised Project.
type SlotProjectMembers struct {
	Front *ProjectMember `json:"front"`
	Back  *ProjectMember `json:"back"`
}

// Member returns the member for face, which may be nil.
func (s *SlotProjectMembers) Member(face Face) *ProjectMember {
	if face == FaceBack {
		return s.Back
	}
	return s.Front
}

// Project is an ordered list of slots plus one shared cardback.
// Order is print order. A Project has a single owner and is not safe
// for concurrent mutation.
type Project struct {
	// ID is the unique identifier for the project.
	ID string `json:"id"`

	// Name is the human-readable name.
	Name string `json:"name"`

	// Members are the slots in print order.
	Members []SlotProjectMembers `json:"members"`

	// Cardback is the shared cardback identifier, or "" when unset.
	Cardback string `json:"cardback,omitempty"`

	// CreatedAt is when the project was built.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the project was last edited.
	UpdatedAt time.Time `json:"updated_at"`
}

// Len returns the number of slots.
func (p *Project) Len() int {
	return len(p.Members)
}

// Slot returns a pointer to the slot at index i.
func (p *Project) Slot(i int) (*SlotProjectMembers, error) {
	if i < 0 || i >= len(p.Members) {
		return nil, fmt.Errorf("%w: slot %d out of range [0,%d)", ErrValidation, i, len(p.Members))
	}
	return &p.Members[i], nil
}

// InsertSlot places slot at index i, shifting later slots back.
// i == Len() appends.
func (p *Project) InsertSlot(i int, slot SlotProjectMembers) error {
	if i < 0 || i > len(p.Members) {
		return fmt.Errorf("%w: insert position %d out of range [0,%d]", ErrValidation, i, len(p.Members))
	}
	if slot.Front == nil {
		return fmt.Errorf("%w: slot has no front member", ErrValidation)
	}
	p.Members = append(p.Members, SlotProjectMembers{})
	copy(p.Members[i+1:], p.Members[i:])
	p.Members[i] = slot
	return nil
}

// RemoveSlot deletes the slot at index i.
func (p *Project) RemoveSlot(i int) error {
	if _, err := p.Slot(i); err != nil {
		return err
	}
	p.Members = append(p.Members[:i], p.Members[i+1:]...)
	return nil
}

// MoveSlot moves the slot at from so that it ends up at index to.
func (p *Project) MoveSlot(from, to int) error {
	if _, err := p.Slot(from); err != nil {
		return err
	}
	if _, err := p.Slot(to); err != nil {
		return err
	}
	slot := p.Members[from]
	p.Members = append(p.Members[:from], p.Members[from+1:]...)
	p.Members = append(p.Members, SlotProjectMembers{})
	copy(p.Members[to+1:], p.Members[to:])
	p.Members[to] = slot
	return nil
}

// Queries returns every distinct non-empty query in the project, in first
// appearance order, fronts before backs within a slot.
func (p *Project) Queries() []SearchQuery {
	seen := make(map[SearchQuery]bool)
	var out []SearchQuery
	add := func(m *ProjectMember) {
		if m == nil || m.Query.IsEmpty() || seen[m.Query] {
			return
		}
		seen[m.Query] = true
		out = append(out, m.Query)
	}
	for i := range p.Members {
		add(p.Members[i].Front)
		add(p.Members[i].Back)
	}
	return out
}

// DFCPairs maps a front card's canonical name to its paired back card's
// canonical name. It is loaded once and read-only afterwards.
type DFCPairs map[string]string

// BackFor returns the paired back name for front. Matching is exact and
// case-sensitive.
func (p DFCPairs) BackFor(front string) (string, bool) {
	if p == nil {
		return "", false
	}
	back, ok := p[front]
	return back, ok
}
