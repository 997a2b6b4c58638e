package view

import (
	"path"
	"strings"

	"github.com/goliatone/go-pongoview/pkg/paths"
)

// Base is the framework's own resolution: one suffix, the conventional
// directories and the plugin and theme roots from paths.Conventions.
type Base struct {
	Conventions  paths.Conventions
	Extension    string
	Plugin       string
	TemplatePath string
}

// TemplateFile resolves a template name. Names without a directory are looked
// up under TemplatePath; a leading "/" anchors the name at the template root.
func (b Base) TemplateFile(name string) (string, error) {
	plugin, key, ok := b.key(name, b.TemplatePath)
	if !ok {
		return "", &paths.MissingTemplateError{Name: name}
	}
	file, searched, found := b.Conventions.Find(key, b.Extension, plugin)
	if !found {
		return "", &paths.MissingTemplateError{Name: name, Paths: searched}
	}
	return file, nil
}

// LayoutFile resolves a layout name under the Layout directory.
func (b Base) LayoutFile(name string) (string, error) {
	plugin, key, ok := b.key(name, "")
	if !ok {
		return "", &paths.MissingLayoutError{Name: name}
	}
	file, searched, found := b.Conventions.Find(paths.LayoutKey(key), b.Extension, plugin)
	if !found {
		return "", &paths.MissingLayoutError{Name: name, Paths: searched}
	}
	return file, nil
}

// ElementFile resolves an element name under the Element directory. A miss
// is reported with false.
func (b Base) ElementFile(name string) (string, bool) {
	file, _, found := b.elementFile(name)
	return file, found
}

func (b Base) elementFile(name string) (string, []string, bool) {
	plugin, key, ok := b.key(name, "")
	if !ok {
		return "", nil, false
	}
	return b.Conventions.Find(paths.ElementKey(key), b.Extension, plugin)
}

// key normalises name, splits the plugin prefix and strips the suffix.
func (b Base) key(name, dir string) (string, string, bool) {
	anchored := strings.HasPrefix(strings.TrimSpace(name), "/")
	cleaned, ok := paths.Normalize(name)
	if !ok {
		return "", "", false
	}
	plugin, key := b.Conventions.SplitPlugin(cleaned, b.Plugin)
	key = paths.TrimExtension(key, b.Extension)
	if dir != "" && !anchored && !strings.Contains(key, "/") {
		key = path.Join(dir, key)
	}
	return plugin, key, true
}
