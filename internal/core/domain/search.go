package domain

import (
	"fmt"
	"strings"
)

// SearchQuery is the text a face is searched by, plus the card type to search.
// An empty Query is the valid "unset" query of an empty slot face.
type SearchQuery struct {
	// Query is the search text.
	Query string `json:"query"`

	// CardType selects the result bucket.
	CardType CardType `json:"card_type"`
}

// IsEmpty reports whether the query has no text.
func (q SearchQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == ""
}

// Validate checks the card type. Empty text is allowed.
func (q SearchQuery) Validate() error {
	if !q.CardType.IsValid() {
		return fmt.Errorf("%w: unknown card type %q", ErrValidation, q.CardType)
	}
	return nil
}

// SearchResultsForQuery holds the ordered card identifiers matching one query
// text, with one bucket per card type.
type SearchResultsForQuery struct {
	Card     []string `json:"CARD"`
	Cardback []string `json:"CARDBACK"`
	Token    []string `json:"TOKEN"`
}

// Get returns the bucket for t. Unknown types yield nil.
func (r SearchResultsForQuery) Get(t CardType) []string {
	switch t {
	case CardTypeCard:
		return r.Card
	case CardTypeCardback:
		return r.Cardback
	case CardTypeToken:
		return r.Token
	default:
		return nil
	}
}

// Set replaces the bucket for t. Unknown types are ignored.
func (r *SearchResultsForQuery) Set(t CardType, ids []string) {
	switch t {
	case CardTypeCard:
		r.Card = ids
	case CardTypeCardback:
		r.Cardback = ids
	case CardTypeToken:
		r.Token = ids
	}
}

// Contains reports whether id is in the bucket for t.
func (r SearchResultsForQuery) Contains(t CardType, id string) bool {
	for _, candidate := range r.Get(t) {
		if candidate == id {
			return true
		}
	}
	return false
}

// SearchResults memoises SearchResultsForQuery by exact query text.
type SearchResults map[string]SearchResultsForQuery

// Get returns the identifiers for q, or nil when q was never resolved.
func (r SearchResults) Get(q SearchQuery) []string {
	if r == nil {
		return nil
	}
	forQuery, ok := r[q.Query]
	if !ok {
		return nil
	}
	return forQuery.Get(q.CardType)
}

// Resolution is the outcome of resolving one SearchQuery.
type Resolution struct {
	// Query is the resolved query.
	Query SearchQuery

	// Identifiers is the merged, filtered, deduplicated result order.
	Identifiers []string

	// FailedSources lists optional sources whose lookup failed and so
	// contributed nothing.
	FailedSources []string
}

// Complete reports whether every enabled source contributed.
func (r Resolution) Complete() bool {
	return len(r.FailedSources) == 0
}
