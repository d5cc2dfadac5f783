package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Add(
		domain.CardDocument{Identifier: "1", Name: "Lightning Bolt", CardType: domain.CardTypeCard, Source: "drive"},
		domain.CardDocument{Identifier: "2", Name: "Lightning Helix", CardType: domain.CardTypeCard, Source: "drive"},
		domain.CardDocument{Identifier: "3", Name: "Lightning Bolt", CardType: domain.CardTypeCard, Source: "local"},
		domain.CardDocument{Identifier: "4", Name: "Goblin", CardType: domain.CardTypeToken, Source: "drive"},
	)
	return c
}

func ids(docs []domain.CardDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Identifier)
	}
	return out
}

func TestCatalog_Search_Exact(t *testing.T) {
	c := testCatalog()

	docs, err := c.Search(context.Background(), driven.SearchRequest{
		Query: "lightning  BOLT", CardType: domain.CardTypeCard, Source: "drive",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(docs))
}

func TestCatalog_Search_Fuzzy(t *testing.T) {
	c := testCatalog()

	docs, err := c.Search(context.Background(), driven.SearchRequest{
		Query: "lightning", CardType: domain.CardTypeCard, Source: "drive", FuzzySearch: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(docs))
}

func TestCatalog_Search_FiltersTypeAndSource(t *testing.T) {
	c := testCatalog()
	ctx := context.Background()

	docs, err := c.Search(ctx, driven.SearchRequest{Query: "goblin", CardType: domain.CardTypeCard, Source: "drive"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = c.Search(ctx, driven.SearchRequest{Query: "goblin", CardType: domain.CardTypeToken, Source: "drive"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(docs))

	docs, err = c.Search(ctx, driven.SearchRequest{Query: "goblin", CardType: domain.CardTypeToken, Source: "s3"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCatalog_SetFailure(t *testing.T) {
	c := testCatalog()
	ctx := context.Background()
	req := driven.SearchRequest{Query: "lightning bolt", CardType: domain.CardTypeCard, Source: "local"}

	c.SetFailure("local", errors.New("offline"))
	_, err := c.Search(ctx, req)
	assert.Error(t, err)

	c.SetFailure("local", nil)
	docs, err := c.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(docs))
}

func TestCatalog_Search_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testCatalog().Search(ctx, driven.SearchRequest{Query: "x", CardType: domain.CardTypeCard, Source: "drive"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog_MatchName(t *testing.T) {
	assert.True(t, matchName("delver of secrets", "Delver of Secrets", false))
	assert.False(t, matchName("delver", "Delver of Secrets", false))
	assert.True(t, matchName("delver", "Delver of Secrets", true))
	assert.True(t, matchName("dlvr", "Delver of Secrets", true))
	assert.False(t, matchName("secrets delver", "Delver of Secrets", true))
}
