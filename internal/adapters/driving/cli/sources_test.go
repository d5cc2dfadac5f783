package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

func TestSourcesCmd_List(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "sources", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "Google Drive")
	assert.Contains(t, out, "Beta Files")
}

func TestSourcesCmd_Order(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "sources", "order")

	require.NoError(t, err)
	assert.Contains(t, out, "1. alpha")
	assert.Contains(t, out, "2. beta")
}

func TestSourcesCmd_Set(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "sources", "set", "beta")

	require.NoError(t, err)
	assert.Contains(t, out, "Searching 2 of 2 sources: [beta alpha]")
	assert.Equal(t, []string{"beta", "alpha"}, env.config.GetStringSlice("sources.order"))
}

func TestSourcesCmd_SetDisable(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "sources", "set", "--disable", "beta")

	require.NoError(t, err)
	assert.Contains(t, out, "Searching 1 of 2 sources: [alpha]")
	assert.Equal(t, []string{"beta"}, env.config.GetStringSlice("sources.disabled"))
}

func TestSourcesCmd_SetUnknown(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "sources", "set", "gamma")
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = execute(t, "sources", "set", "--disable", "gamma")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSourcesCmd_SetThenSearchUsesNewOrder(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "sources", "set", "beta")
	require.NoError(t, err)
	require.NoError(t, reloadSettings(context.Background()))

	res, err := searchService.Resolve(context.Background(), domain.SearchQuery{Query: "forest", CardType: domain.CardTypeCard})

	require.NoError(t, err)
	assert.Equal(t, []string{"b-forest", "a-forest"}, res.Identifiers)
}
