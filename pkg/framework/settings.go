// Package framework describes the host framework services the template bridge
// consumes and ships small default implementations of each.
package framework

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Configuration exposes dotted-key reads of application settings.
type Configuration interface {
	Read(key string) any
	Check(key string) bool
}

// Settings is an in-memory Configuration backed by nested maps.
type Settings struct {
	mu   sync.RWMutex
	data map[string]any
}

var _ Configuration = (*Settings)(nil)

// NewSettings wraps data. The map is copied at the top level.
func NewSettings(data map[string]any) *Settings {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		copied[key] = value
	}
	return &Settings{data: copied}
}

// LoadSettings reads a YAML settings document from fsys.
func LoadSettings(fsys fs.FS, path string) (*Settings, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("framework: read settings %s: %w", path, err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("framework: parse settings %s: %w", path, err)
	}
	return NewSettings(data), nil
}

// Read returns the value stored under a dotted key such as "App.name", or nil.
func (s *Settings) Read(key string) any {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, _ := lookup(s.data, key)
	return value
}

// Check reports whether key holds a non-nil value.
func (s *Settings) Check(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := lookup(s.data, key)
	return ok && value != nil
}

// Write stores value under a dotted key, creating intermediate maps.
func (s *Settings) Write(key string, value any) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = map[string]any{}
	}
	current := s.data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func lookup(data map[string]any, key string) (any, bool) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return nil, false
	}
	var current any = data
	for _, part := range parts {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return nil, false
			}
			current = value
		case map[any]any:
			value, ok := node[part]
			if !ok {
				return nil, false
			}
			current = value
		default:
			return nil, false
		}
	}
	return current, true
}

func splitKey(key string) []string {
	trimmed := strings.Trim(strings.TrimSpace(key), ".")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ".")
}
