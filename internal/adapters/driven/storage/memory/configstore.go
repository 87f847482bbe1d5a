package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/recall/internal/adapters/driven/config/values"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map for ephemeral runs and tests.
// Save and Load succeed without touching disk.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get returns the raw value stored under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string        { return values.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int              { return values.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return values.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return values.Bool(s.value(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return values.StringSlice(s.value(key)) }

// Set replaces the value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of every stored key.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:" since nothing is persisted.
func (s *ConfigStore) Path() string { return ":memory:" }
