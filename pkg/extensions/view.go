package extensions

import (
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// View exposes the functions that call back into the view performing the
// render. pongo2 has no map literals, so element data comes from a variable;
// the element tag accepts inline pairs instead.
//
//	{{ element("card", card) }}
//	{% element "card" with title=title %}
//	{{ fetch("sidebar", "") }}
type View struct{}

// Name implements environment.Extension.
func (View) Name() string { return "view" }

// Functions implements environment.Extension.
func (View) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"element": func(ectx *pongo2.ExecutionContext, name any, args ...any) (*pongo2.Value, error) {
			view, ok := environment.CurrentView(ectx)
			if !ok {
				return nil, environment.ErrNoView
			}
			out, err := view.Element(environment.GoContext(ectx), str(name), argMap(args, 0), argMap(args, 1))
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
		"cell": func(ectx *pongo2.ExecutionContext, name any, args ...any) (*pongo2.Value, error) {
			view, ok := environment.CurrentView(ectx)
			if !ok {
				return nil, environment.ErrNoView
			}
			out, err := view.Cell(environment.GoContext(ectx), str(name), argMap(args, 0), argMap(args, 1))
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(out), nil
		},
		"fetch": func(ectx *pongo2.ExecutionContext, name any, fallback ...any) (*pongo2.Value, error) {
			view, ok := environment.CurrentView(ectx)
			if !ok {
				return nil, environment.ErrNoView
			}
			return pongo2.AsSafeValue(view.Fetch(str(name), argString(fallback, 0, ""))), nil
		},
		"helper": func(ectx *pongo2.ExecutionContext, name any) (any, error) {
			view, ok := environment.CurrentView(ectx)
			if !ok {
				return nil, environment.ErrNoView
			}
			helper, _ := view.Helper(str(name))
			return helper, nil
		},
	}
}

// Filters implements environment.Extension.
func (View) Filters() map[string]pongo2.FilterFunction { return nil }
