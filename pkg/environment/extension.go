package environment

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Extension is a capability provider: a fixed table of template functions and
// filters. Functions are bound to one environment; filters go to pongo2's
// process-wide filter registry.
type Extension interface {
	Name() string
	Functions(env *Environment) map[string]any
	Filters() map[string]pongo2.FilterFunction
}

// FilterOverrider is implemented by extensions whose filters must replace a
// pongo2 built-in of the same name.
type FilterOverrider interface {
	OverriddenFilters() []string
}

// Registry stores extensions by name.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]Extension
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extensions: make(map[string]Extension)}
}

// Register adds ext by its Name(). Duplicate names return an error.
func (r *Registry) Register(ext Extension) error {
	if ext == nil {
		return fmt.Errorf("environment: extension is required")
	}
	name := ext.Name()
	if name == "" {
		return fmt.Errorf("environment: extension name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extensions[name]; exists {
		return fmt.Errorf("environment: extension %q already registered", name)
	}
	r.extensions[name] = ext
	return nil
}

// Get retrieves an extension by name.
func (r *Registry) Get(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extensions[name]
	return ext, ok
}

// List returns a sorted list of extension names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extensions))
	for name := range r.extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an extension is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extensions[name]
	return ok
}

// AddExtension registers ext, binds its functions as template globals and
// installs its filters.
func (e *Environment) AddExtension(ext Extension) error {
	if err := e.extensions.Register(ext); err != nil {
		return err
	}

	functions := ext.Functions(e)
	for name, fn := range functions {
		if fn == nil {
			continue
		}
		if err := e.SetGlobal(name, fn); err != nil {
			return fmt.Errorf("environment: extension %q: %w", ext.Name(), err)
		}
	}

	var overrides []string
	if overrider, ok := ext.(FilterOverrider); ok {
		overrides = overrider.OverriddenFilters()
	}
	if err := installFilters(ext.Filters(), overrides); err != nil {
		return fmt.Errorf("environment: extension %q: %w", ext.Name(), err)
	}

	e.logger.Debug("extension added",
		slog.String("extension", ext.Name()),
		slog.Int("functions", len(functions)),
		slog.Int("filters", len(ext.Filters())),
	)
	return nil
}

var (
	filterMu       sync.Mutex
	replacedFilter = map[string]bool{}

	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func installFilters(filters map[string]pongo2.FilterFunction, overrides []string) error {
	filterMu.Lock()
	defer filterMu.Unlock()

	replace := make(map[string]bool, len(overrides))
	for _, name := range overrides {
		replace[name] = true
	}

	for name, fn := range filters {
		if fn == nil || !ValidIdentifier(name) {
			return fmt.Errorf("invalid filter %q", name)
		}
		if replace[name] && pongo2.FilterExists(name) {
			if replacedFilter[name] {
				continue
			}
			if err := pongo2.ReplaceFilter(name, fn); err != nil {
				return err
			}
			replacedFilter[name] = true
			continue
		}
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidIdentifier reports whether name can be used as a pongo2 context key.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
