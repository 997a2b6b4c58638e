// Package markdown defines the markdown capability consumed by templates and
// provides a default engine backed by gomarkdown and bluemonday.
package markdown

import (
	"strings"

	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// RuntimeName is the identifier the environment uses to look up the markdown
// runtime.
const RuntimeName = "markdown"

// Engine converts markdown source into HTML.
type Engine interface {
	Transform(text string) (string, error)
}

// EngineFunc adapts a plain function to Engine.
type EngineFunc func(text string) (string, error)

// Transform calls f.
func (f EngineFunc) Transform(text string) (string, error) {
	return f(text)
}

// Option configures the default engine.
type Option func(*GoMarkdown)

// WithExtensions overrides the gomarkdown parser extensions.
func WithExtensions(ext parser.Extensions) Option {
	return func(g *GoMarkdown) {
		g.extensions = ext
	}
}

// WithFlags overrides the gomarkdown HTML renderer flags.
func WithFlags(flags html.Flags) Option {
	return func(g *GoMarkdown) {
		g.flags = flags
	}
}

// WithPolicy replaces the sanitising policy. A nil policy disables sanitising.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(g *GoMarkdown) {
		g.policy = policy
	}
}

// GoMarkdown renders markdown with gomarkdown and sanitises the result with a
// bluemonday UGC policy.
type GoMarkdown struct {
	extensions parser.Extensions
	flags      html.Flags
	policy     *bluemonday.Policy
}

// NewGoMarkdown constructs the default engine.
func NewGoMarkdown(opts ...Option) *GoMarkdown {
	engine := &GoMarkdown{
		extensions: parser.CommonExtensions | parser.AutoHeadingIDs,
		flags:      html.CommonFlags | html.HrefTargetBlank,
		policy:     UGCPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Transform renders text. gomarkdown parsers keep state, so one is built per
// call.
func (g *GoMarkdown) Transform(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	p := parser.NewWithExtensions(g.extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: g.flags})
	out := string(gomarkdown.ToHTML([]byte(text), p, renderer))
	if g.policy != nil {
		out = g.policy.Sanitize(out)
	}
	return out, nil
}

// RuntimeLoader exposes an Engine to the environment under RuntimeName.
type RuntimeLoader struct {
	engine Engine
}

// NewRuntimeLoader wraps engine. A nil engine produces a loader that never
// provides the runtime.
func NewRuntimeLoader(engine Engine) *RuntimeLoader {
	return &RuntimeLoader{engine: engine}
}

// Load returns the engine when name is RuntimeName.
func (l *RuntimeLoader) Load(name string) (any, bool) {
	if l == nil || l.engine == nil || name != RuntimeName {
		return nil, false
	}
	return l.engine, true
}
