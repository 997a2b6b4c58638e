package paths

import (
	"io/fs"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Directory names that make up the host framework's template layout.
const (
	DefaultRoot       = "templates"
	LayoutDir         = "Layout"
	ElementDir        = "Element"
	CellDir           = "Cell"
	PluginOverrideDir = "plugin"
	ThemesDir         = "themes"
)

// PluginLocator exposes the plugin facts path resolution needs. The framework
// package provides a registry implementation.
type PluginLocator interface {
	Loaded(name string) bool
	TemplateRoot(name string) (string, bool)
}

// Conventions captures the framework rules used to turn a logical template
// name into a file inside FS. It is plugin-aware (Plugin.name syntax and
// per-plugin roots) and theme-aware (theme roots and go-theme manifest
// overrides).
type Conventions struct {
	FS        fs.FS
	Root      string
	Plugins   PluginLocator
	Theme     string
	Selection *theme.Selection
}

func (c Conventions) root() string {
	if strings.TrimSpace(c.Root) == "" {
		return DefaultRoot
	}
	return strings.Trim(c.Root, "/")
}

func (c Conventions) themeName() string {
	if c.Theme != "" {
		return c.Theme
	}
	if c.Selection != nil {
		return c.Selection.Theme
	}
	return ""
}

// SplitPlugin splits "Plugin.Dir/name" into its plugin and name parts when the
// prefix names a loaded plugin. Otherwise fallback is returned as the plugin.
func (c Conventions) SplitPlugin(name, fallback string) (string, string) {
	idx := strings.Index(name, ".")
	if idx <= 0 || c.Plugins == nil {
		return fallback, name
	}
	candidate := name[:idx]
	if strings.Contains(candidate, "/") || !c.Plugins.Loaded(candidate) {
		return fallback, name
	}
	return candidate, name[idx+1:]
}

// SearchPaths lists the template roots for plugin in priority order: theme
// roots, the application's plugin override directory, the plugin's own root
// and finally the application root.
func (c Conventions) SearchPaths(plugin string) []string {
	root := c.root()
	var out []string

	if name := c.themeName(); name != "" {
		themeRoot := path.Join(ThemesDir, name, DefaultRoot)
		if c.Plugins != nil {
			if r, ok := c.Plugins.TemplateRoot(name); ok {
				themeRoot = r
			}
		}
		if plugin != "" {
			out = append(out, path.Join(themeRoot, PluginOverrideDir, plugin))
		}
		out = append(out, themeRoot)
	}

	if plugin != "" {
		out = append(out, path.Join(root, PluginOverrideDir, plugin))
		if c.Plugins != nil {
			if r, ok := c.Plugins.TemplateRoot(plugin); ok {
				out = append(out, r)
			}
		}
	}

	return append(out, root)
}

// ThemeOverride returns the file a go-theme manifest maps key to, preferring
// the selected variant.
func (c Conventions) ThemeOverride(key string) (string, bool) {
	if c.Selection == nil || c.Selection.Manifest == nil {
		return "", false
	}
	manifest := c.Selection.Manifest
	if c.Selection.Variant != "" {
		if variant, ok := manifest.Variants[c.Selection.Variant]; ok {
			if file, ok := variant.Templates[key]; ok && file != "" {
				return file, true
			}
		}
	}
	if file, ok := manifest.Templates[key]; ok && file != "" {
		return file, true
	}
	return "", false
}

// Find looks for key+ext under every search root of plugin. It returns the
// first existing file and the list of candidates that were tried.
func (c Conventions) Find(key, ext, plugin string) (string, []string, bool) {
	var searched []string

	if override, ok := c.ThemeOverride(key); ok && strings.HasSuffix(override, ext) {
		searched = append(searched, override)
		if c.Exists(override) {
			return override, searched, true
		}
	}

	for _, root := range c.SearchPaths(plugin) {
		candidate := path.Join(root, key+ext)
		searched = append(searched, candidate)
		if c.Exists(candidate) {
			return candidate, searched, true
		}
	}
	return "", searched, false
}

// Exists reports whether name is a regular file in FS.
func (c Conventions) Exists(name string) bool {
	if c.FS == nil || name == "" {
		return false
	}
	info, err := fs.Stat(c.FS, name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Normalize cleans a logical name. Names escaping the template root are
// rejected.
func Normalize(name string) (string, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if trimmed == "" {
		return "", false
	}
	cleaned := path.Clean("/" + trimmed)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", false
		}
	}
	return cleaned, true
}

// TrimExtension strips the first matching suffix of exts from name.
func TrimExtension(name string, exts ...string) string {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// LayoutKey returns the logical key for a layout name.
func LayoutKey(name string) string {
	return path.Join(LayoutDir, name)
}

// ElementKey returns the logical key for an element name.
func ElementKey(name string) string {
	return path.Join(ElementDir, name)
}

// CellKey returns the logical key for a cell template.
func CellKey(cell, action string) string {
	return path.Join(CellDir, cell, action)
}
