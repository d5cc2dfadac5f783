package services

import (
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// BuildProject expands lines into slots in input order, each line repeated
// for its quantity. Selections are left unset.
//
// A line with an explicit back query gets a back member built from it and the
// DFC table is not consulted. Otherwise, when the front query resolved to at
// least one card (or results is nil), a paired back from dfc becomes the back
// member. Slots without a back use the shared project cardback.
//
// DFC pairs are keyed by canonical card name. When names is non-nil only
// fronts listed in it are paired, under their canonical name; a nil names
// treats each query text as already canonical.
func BuildProject(
	lines []domain.ProcessedLine, results domain.SearchResults, names CardNames, dfc *DFCResolver,
) *domain.Project {
	project := &domain.Project{}

	for i, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		if line.Front == nil && line.Back == nil {
			logger.Debug("Line %d is blank, skipping", i)
			continue
		}

		front := domain.SearchQuery{CardType: domain.CardTypeCard}
		if line.Front != nil {
			front = *line.Front
		}

		var back *domain.SearchQuery
		switch {
		case line.Back != nil:
			q := *line.Back
			back = &q
		case frontResolved(front, results):
			canonical, ok := names.lookup(front.Query)
			if !ok {
				logger.Debug("Front %q has no single card name, not pairing", front.Query)
				break
			}
			if name, ok := dfc.BackFor(canonical); ok {
				logger.Debug("Linked DFC back %q to %q", name, canonical)
				back = &domain.SearchQuery{Query: name, CardType: domain.CardTypeCard}
			}
		}

		for n := 0; n < line.Quantity; n++ {
			slot := domain.SlotProjectMembers{Front: &domain.ProjectMember{Query: front}}
			if back != nil {
				slot.Back = &domain.ProjectMember{Query: *back}
			}
			project.Members = append(project.Members, slot)
		}
	}

	return project
}

// frontResolved reports whether the front query can be paired. A query known
// to have no CARD results is never paired.
func frontResolved(front domain.SearchQuery, results domain.SearchResults) bool {
	if front.IsEmpty() {
		return false
	}
	if results == nil {
		return true
	}
	forQuery, ok := results[front.Query]
	if !ok {
		return true
	}
	return len(forQuery.Get(domain.CardTypeCard)) > 0
}

// CardNames maps a front query text to the one card name all of its CARD
// results share.
type CardNames map[string]string

func (n CardNames) lookup(text string) (string, bool) {
	if n == nil {
		return text, true
	}
	name, ok := n[text]
	return name, ok
}
