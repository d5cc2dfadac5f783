package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCmd_Show(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Fuzzy search: off")
	assert.Contains(t, out, "Languages: any")
	assert.Contains(t, out, "All sources, in catalog order")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_DefaultsToShow(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsCmd_SetMinDPI(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "set-min-dpi", "400")

	require.NoError(t, err)
	assert.Contains(t, out, "Minimum DPI set to 400")
	assert.Equal(t, 400, env.config.GetInt("filters.minimum_dpi"))
}

func TestSettingsCmd_SetMinDPI_Invalid(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "settings", "set-min-dpi", "high")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DPI")
}

func TestSettingsCmd_SetMaxSize(t *testing.T) {
	env := setupTestServices(t)

	_, err := execute(t, "settings", "set-max-size", "12")

	require.NoError(t, err)
	assert.Equal(t, 12, env.config.GetInt("filters.maximum_size"))
}

func TestSettingsCmd_Fuzzy(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings", "fuzzy", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Fuzzy search on")
	assert.True(t, env.config.GetBool("search.fuzzy"))

	_, err = execute(t, "settings", "fuzzy", "maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected on or off")
}

func TestSettingsCmd_ShowsSourceRows(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "sources", "set", "beta", "--disable", "alpha")
	require.NoError(t, err)

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "1. beta")
	assert.Contains(t, out, "2. alpha")
	assert.Contains(t, out, "disabled")
}

func TestSettingsCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	settingsService = nil

	_, err := execute(t, "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
