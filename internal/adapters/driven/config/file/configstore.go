package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/config"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. Dotted keys are written as
// nested tables, so "filters.minimum_dpi" lands as minimum_dpi under
// [filters]. Every write replaces the file atomically, so a Watcher never
// reads a half-written file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   config.Values
}

// NewConfigStore opens config.toml in configDir, creating the directory if
// needed. An empty configDir means ~/.cardfill.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".cardfill")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		values:   make(config.Values),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
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

// Set stores one value and rewrites the file if it changed.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Apply(map[string]any{key: value})
}

// Apply stores every change and rewrites the file once. A nil value removes
// its key. The file is left untouched when nothing changed.
func (s *ConfigStore) Apply(changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(config.Values, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	if !next.Apply(changes) {
		return nil
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Save rewrites the file with the current values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.values)
}

// write replaces the file via a temp file in the same directory
// (caller must hold lock).
func (s *ConfigStore) write(values config.Values) error {
	data, err := toml.Marshal(values.Nest())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load reads the file, replacing the in-memory values. A missing file loads
// as empty. A file that fails to parse leaves the current values in place.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		s.values = make(config.Values)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	var nested map[string]any
	if err := toml.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = config.Flatten(nested)
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
