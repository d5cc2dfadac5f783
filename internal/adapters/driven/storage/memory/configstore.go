package memory

import (
	"sync"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/config"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. It backs settings in tests and when
// the config file cannot be opened. Writes counts the persisting calls that
// changed something, so tests can check that unchanged saves are skipped.
type ConfigStore struct {
	mu     sync.RWMutex
	values config.Values
	writes int
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(config.Values)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.StringSlice(key)
}

// Set stores one value.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Apply(map[string]any{key: value})
}

// Apply stores every change at once. A nil value removes its key.
func (s *ConfigStore) Apply(changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values.Apply(changes) {
		s.writes++
	}
	return nil
}

// Writes returns how many calls changed the stored values.
func (s *ConfigStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Save is a no-op.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns ":memory:".
func (s *ConfigStore) Path() string {
	return ":memory:"
}
