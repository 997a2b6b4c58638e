// Package config holds the options used to build the shared template
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pongoview/pkg/markdown"
)

// Default suffixes in resolution order. The custom suffix precedes the
// framework's native one.
const (
	CustomExtension    = ".pongo2"
	FrameworkExtension = ".tpl"
)

// EngineGoMarkdown selects the built-in markdown engine from YAML.
const EngineGoMarkdown = "gomarkdown"

// Config is the configuration bag. It is treated as read-only once an
// environment has been built from it.
type Config struct {
	Environment Environment `yaml:"environment"`
	Markdown    Markdown    `yaml:"markdown"`
	Extensions  []string    `yaml:"extensions"`
	Root        string      `yaml:"root"`
}

// Environment carries the raw engine options.
type Environment struct {
	// Charset is informational: pongo2 always renders UTF-8 strings. Hosts
	// such as the preview server use it for the Content-Type header.
	Charset      string `yaml:"charset"`
	Debug        bool   `yaml:"debug"`
	Cache        *bool  `yaml:"cache"`
	TrimBlocks   bool   `yaml:"trim_blocks"`
	LStripBlocks bool   `yaml:"lstrip_blocks"`
}

// Markdown binds the markdown engine. Engine wins over EngineName.
type Markdown struct {
	Engine     markdown.Engine `yaml:"-"`
	EngineName string          `yaml:"engine"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Environment: Environment{Charset: "utf-8"},
		Extensions:  []string{CustomExtension, FrameworkExtension},
	}
}

// CacheEnabled reports whether compiled templates are cached. Without an
// explicit value caching follows !Debug.
func (c Config) CacheEnabled() bool {
	if c.Environment.Cache != nil {
		return *c.Environment.Cache
	}
	return !c.Environment.Debug
}

// MarkdownEngine returns the configured engine or nil when markdown support is
// not configured.
func (c Config) MarkdownEngine() markdown.Engine {
	if c.Markdown.Engine != nil {
		return c.Markdown.Engine
	}
	if strings.EqualFold(strings.TrimSpace(c.Markdown.EngineName), EngineGoMarkdown) {
		return markdown.NewGoMarkdown()
	}
	return nil
}

// Merge layers override on top of base. Zero values in override leave base
// untouched; boolean flags can only be switched on.
func Merge(base, override Config) Config {
	out := base
	out.Extensions = append([]string(nil), base.Extensions...)

	env := override.Environment
	if env.Charset != "" {
		out.Environment.Charset = env.Charset
	}
	if env.Debug {
		out.Environment.Debug = true
	}
	if env.Cache != nil {
		cache := *env.Cache
		out.Environment.Cache = &cache
	}
	if env.TrimBlocks {
		out.Environment.TrimBlocks = true
	}
	if env.LStripBlocks {
		out.Environment.LStripBlocks = true
	}

	if override.Markdown.Engine != nil {
		out.Markdown.Engine = override.Markdown.Engine
	}
	if override.Markdown.EngineName != "" {
		out.Markdown.EngineName = override.Markdown.EngineName
	}
	if len(override.Extensions) > 0 {
		out.Extensions = NormalizeExtensions(override.Extensions)
	}
	if override.Root != "" {
		out.Root = override.Root
	}
	return out
}

// NormalizeExtensions trims, dot-prefixes and de-duplicates suffixes while
// keeping their order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// Parse decodes YAML and merges it over Defaults.
func Parse(data []byte) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Defaults(), nil
	}
	var raw Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	return Merge(Defaults(), raw), nil
}

// LoadFS reads a YAML configuration file from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	if fsys == nil {
		return Config{}, errors.New("config: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file from disk.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}
