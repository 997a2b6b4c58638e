package extensions

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/markdown"
)

// Markdown exposes markdown_to_html. The engine comes from the environment's
// runtime loaders, so the function exists even when no engine is configured
// and fails at call time instead.
type Markdown struct{}

// Name implements environment.Extension.
func (Markdown) Name() string { return "markdown" }

// Functions implements environment.Extension.
func (Markdown) Functions(env *environment.Environment) map[string]any {
	return map[string]any{
		"markdown_to_html": func(text any) (*pongo2.Value, error) {
			runtime, err := env.Runtime(markdown.RuntimeName)
			if err != nil {
				return nil, err
			}
			engine, ok := runtime.(markdown.Engine)
			if !ok {
				return nil, fmt.Errorf("extensions: runtime %q is %T, not a markdown engine", markdown.RuntimeName, runtime)
			}
			out, err := engine.Transform(str(text))
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
	}
}

// Filters implements environment.Extension.
func (Markdown) Filters() map[string]pongo2.FilterFunction { return nil }
