package domain

import "fmt"

// Stock is a card stock offered by the printer.
type Stock string

// Available stocks.
const (
	StockStandardSmooth Stock = "(S30) Standard Smooth"
	StockSuperiorSmooth Stock = "(S33) Superior Smooth"
	StockLinen          Stock = "(M31) Linen"
	StockPlastic        Stock = "(P10) Plastic"
)

// IsValid returns true if the stock is recognised.
func (s Stock) IsValid() bool {
	switch s {
	case StockStandardSmooth, StockSuperiorSmooth, StockLinen, StockPlastic:
		return true
	default:
		return false
	}
}

// Brackets are the order sizes the printer accepts, ascending.
var Brackets = []int{18, 36, 55, 72, 90, 108, 126, 144, 162, 180, 198, 216, 234, 396, 504, 612}

// BracketFor returns the smallest bracket that fits n cards.
func BracketFor(n int) (int, error) {
	for _, b := range Brackets {
		if n <= b {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %d cards exceeds the largest bracket %d", ErrValidation, n, Brackets[len(Brackets)-1])
}

// OrderDetails summarises a project for printing.
type OrderDetails struct {
	// Quantity is the number of slots.
	Quantity int `json:"quantity"`

	// Bracket is the order size the project is printed at.
	Bracket int `json:"bracket"`

	// Stock is the card stock.
	Stock Stock `json:"stock"`

	// Foil requests a foil finish.
	Foil bool `json:"foil"`
}

// CardImage is one image and the slots it is printed in.
type CardImage struct {
	// Identifier is the image's card identifier.
	Identifier string `json:"identifier"`

	// Name is the card name, when known.
	Name string `json:"name,omitempty"`

	// Slots are the 0-based slot indices, ascending.
	Slots []int `json:"slots"`
}

// CardOrder is a project grouped by image, ready for upload.
type CardOrder struct {
	Details OrderDetails `json:"details"`

	// Fronts and Backs list each distinct image once, in first slot order.
	Fronts []CardImage `json:"fronts"`
	Backs  []CardImage `json:"backs"`

	// SameBacks is set when every slot is backed by one image, so the
	// printer can use a single back for the whole order.
	SameBacks bool `json:"same_backs"`

	// MissingFronts and MissingBacks are slots no image could be chosen for.
	MissingFronts []int `json:"missing_fronts,omitempty"`
	MissingBacks  []int `json:"missing_backs,omitempty"`
}

// Complete reports whether every slot has both faces filled.
func (o *CardOrder) Complete() bool {
	return len(o.MissingFronts) == 0 && len(o.MissingBacks) == 0
}

// NewCardOrder groups the faces of project by image. Each face uses its
// selected image, or else the first of its query's results. Slots without a
// back member use the project cardback.
func NewCardOrder(project *Project, details OrderDetails, results SearchResults) *CardOrder {
	order := &CardOrder{Details: details, Fronts: []CardImage{}, Backs: []CardImage{}}
	fronts := imageGroups{images: &order.Fronts}
	backs := imageGroups{images: &order.Backs}

	for i := range project.Members {
		slot := &project.Members[i]

		if id := chosenImage(slot.Front, results); id != "" {
			fronts.add(id, i)
		} else {
			order.MissingFronts = append(order.MissingFronts, i)
		}

		back := project.Cardback
		if slot.Back != nil {
			back = chosenImage(slot.Back, results)
		}
		if back != "" {
			backs.add(back, i)
		} else {
			order.MissingBacks = append(order.MissingBacks, i)
		}
	}

	order.SameBacks = len(order.Backs) == 1 && len(order.MissingBacks) == 0
	return order
}

func chosenImage(m *ProjectMember, results SearchResults) string {
	if m == nil {
		return ""
	}
	if m.SelectedImage != "" {
		return m.SelectedImage
	}
	if ids := results.Get(m.Query); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

type imageGroups struct {
	images *[]CardImage
	index  map[string]int
}

func (g *imageGroups) add(id string, slot int) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	i, ok := g.index[id]
	if !ok {
		i = len(*g.images)
		g.index[id] = i
		*g.images = append(*g.images, CardImage{Identifier: id})
	}
	(*g.images)[i].Slots = append((*g.images)[i].Slots, slot)
}
