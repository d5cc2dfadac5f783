package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("search.fuzzy", true))
	require.NoError(t, store.Set("filters.minimum_dpi", 300))
	require.NoError(t, store.Set("filters.languages", []string{"EN", "FR"}))
	require.NoError(t, store.Set("filters.created_after", "2024-01-01T00:00:00Z"))

	assert.True(t, store.GetBool("search.fuzzy"))
	assert.Equal(t, 300, store.GetInt("filters.minimum_dpi"))
	assert.Equal(t, []string{"EN", "FR"}, store.GetStringSlice("filters.languages"))
	assert.Equal(t, "2024-01-01T00:00:00Z", store.GetString("filters.created_after"))
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "not a number")

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_NumericConversions(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("int64", int64(42))
	_ = store.Set("float", float64(7))
	_ = store.Set("mixed", []any{"a", 1, "b"})

	assert.Equal(t, 42, store.GetInt("int64"))
	assert.Equal(t, 7, store.GetInt("float"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("mixed"))
}

func TestConfigStore_ApplyRemovesNilKeys(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("filters.created_before", "2024-01-01T00:00:00Z")

	require.NoError(t, store.Apply(map[string]any{
		"filters.created_before": nil,
		"never.set":              nil,
		"filters.minimum_dpi":    300,
	}))

	_, ok := store.Get("filters.created_before")
	assert.False(t, ok)
	assert.Equal(t, 300, store.GetInt("filters.minimum_dpi"))
}

func TestConfigStore_WritesCountsChanges(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("filters.minimum_dpi", 300))
	require.NoError(t, store.Set("filters.minimum_dpi", 300))
	require.NoError(t, store.Apply(map[string]any{"never.set": nil}))

	assert.Equal(t, 1, store.Writes())
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("filters.max_results", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("filters.max_results")
		}()
	}
	wg.Wait()

	_, ok := store.Get("filters.max_results")
	assert.True(t, ok)
}
