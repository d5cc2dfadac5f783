package driven

// ConfigStore holds the persisted settings as flat dotted keys
// ("filters.minimum_dpi"). Typed getters return the zero value when a key
// is missing or holds another type; use Get to tell the two apart.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores one value and persists it.
	Set(key string, value any) error

	// Apply stores every change in one write. A nil value removes its key.
	// Nothing is written when no value differs from the stored one.
	Apply(changes map[string]any) error

	// Save persists the current values.
	Save() error

	// Load replaces the in-memory values with the persisted ones. On error
	// the previous values are kept.
	Load() error

	// Path returns where the values are persisted.
	Path() string
}
