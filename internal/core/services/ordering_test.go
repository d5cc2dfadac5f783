package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

func knownSources(keys ...string) map[string]domain.SourceDocument {
	known := make(map[string]domain.SourceDocument, len(keys))
	for _, k := range keys {
		known[k] = domain.SourceDocument{Key: k}
	}
	return known
}

func TestRankSources(t *testing.T) {
	tests := []struct {
		name     string
		rows     []domain.SourceRow
		expected []string
	}{
		{
			name:     "empty",
			rows:     nil,
			expected: []string{},
		},
		{
			name:     "all enabled keep order",
			rows:     enabled("c", "a", "b"),
			expected: []string{"c", "a", "b"},
		},
		{
			name: "disabled rows dropped",
			rows: []domain.SourceRow{
				{Key: "a", Enabled: true},
				{Key: "b", Enabled: false},
				{Key: "c", Enabled: true},
			},
			expected: []string{"a", "c"},
		},
		{
			name:     "all disabled",
			rows:     []domain.SourceRow{{Key: "a"}, {Key: "b"}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := RankSources(tt.rows, knownSources("a", "b", "c"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}

func TestRankSources_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []domain.SourceRow
	}{
		{"duplicate key", []domain.SourceRow{{Key: "a", Enabled: true}, {Key: "a", Enabled: false}}},
		{"unknown key", enabled("a", "z")},
		{"unknown disabled key", []domain.SourceRow{{Key: "z", Enabled: false}}},
		{"empty key", []domain.SourceRow{{Key: "", Enabled: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RankSources(tt.rows, knownSources("a", "b"))
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

func TestRankSources_NilRegistrySkipsLookup(t *testing.T) {
	order, err := RankSources(enabled("anything", "else"), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"anything", "else"}, order)
}
