package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchQuery_IsEmpty(t *testing.T) {
	assert.True(t, SearchQuery{CardType: CardTypeCard}.IsEmpty())
	assert.True(t, SearchQuery{Query: "   ", CardType: CardTypeCard}.IsEmpty())
	assert.False(t, SearchQuery{Query: "forest", CardType: CardTypeCard}.IsEmpty())
}

func TestSearchQuery_Validate(t *testing.T) {
	assert.NoError(t, SearchQuery{Query: "forest", CardType: CardTypeCard}.Validate())
	assert.NoError(t, SearchQuery{CardType: CardTypeToken}.Validate())
	assert.ErrorIs(t, SearchQuery{Query: "forest"}.Validate(), ErrValidation)
	assert.ErrorIs(t, SearchQuery{Query: "forest", CardType: "EMBLEM"}.Validate(), ErrValidation)
}

func TestSearchResultsForQuery_GetSet(t *testing.T) {
	var r SearchResultsForQuery

	r.Set(CardTypeCard, []string{"a", "b"})
	r.Set(CardTypeCardback, []string{"c"})
	r.Set(CardTypeToken, []string{"d"})
	r.Set(CardType("EMBLEM"), []string{"ignored"})

	assert.Equal(t, []string{"a", "b"}, r.Get(CardTypeCard))
	assert.Equal(t, []string{"c"}, r.Get(CardTypeCardback))
	assert.Equal(t, []string{"d"}, r.Get(CardTypeToken))
	assert.Nil(t, r.Get(CardType("EMBLEM")))
}

func TestSearchResultsForQuery_Contains(t *testing.T) {
	r := SearchResultsForQuery{Card: []string{"a", "b"}}

	assert.True(t, r.Contains(CardTypeCard, "b"))
	assert.False(t, r.Contains(CardTypeCard, "z"))
	assert.False(t, r.Contains(CardTypeToken, "a"))
}

func TestSearchResults_Get(t *testing.T) {
	results := SearchResults{
		"forest": {Card: []string{"f1", "f2"}},
	}

	assert.Equal(t, []string{"f1", "f2"}, results.Get(SearchQuery{Query: "forest", CardType: CardTypeCard}))
	assert.Nil(t, results.Get(SearchQuery{Query: "forest", CardType: CardTypeToken}))
	assert.Nil(t, results.Get(SearchQuery{Query: "island", CardType: CardTypeCard}))

	var empty SearchResults
	assert.Nil(t, empty.Get(SearchQuery{Query: "forest", CardType: CardTypeCard}))
}

func TestResolution_Complete(t *testing.T) {
	assert.True(t, Resolution{}.Complete())
	assert.False(t, Resolution{FailedSources: []string{"s1"}}.Complete())
}
