package framework

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Plugins is the plugin registry consulted during path resolution. It
// satisfies paths.PluginLocator.
type Plugins struct {
	mu      sync.RWMutex
	plugins map[string]string
}

// NewPlugins creates an empty registry.
func NewPlugins() *Plugins {
	return &Plugins{plugins: make(map[string]string)}
}

// Load marks name as loaded with its template root. An empty root defaults to
// plugins/<name>/templates.
func (p *Plugins) Load(name, templateRoot string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("framework: plugin name is required")
	}
	if strings.ContainsAny(name, "./") {
		return fmt.Errorf("framework: invalid plugin name %q", name)
	}
	root := strings.Trim(strings.TrimSpace(templateRoot), "/")
	if root == "" {
		root = path.Join("plugins", name, "templates")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.plugins[name]; exists {
		return fmt.Errorf("framework: plugin %q already loaded", name)
	}
	p.plugins[name] = root
	return nil
}

// Loaded reports whether name has been loaded.
func (p *Plugins) Loaded(name string) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.plugins[name]
	return ok
}

// TemplateRoot returns the template directory of a loaded plugin.
func (p *Plugins) TemplateRoot(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	root, ok := p.plugins[name]
	return root, ok
}

// List returns the loaded plugin names in sorted order.
func (p *Plugins) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.plugins))
	for name := range p.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
