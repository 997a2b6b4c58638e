package environment

import (
	"context"
	"errors"

	"github.com/flosch/pongo2/v6"
)

// Keys placed into every render context.
const (
	// ViewKey holds the view performing the current render.
	ViewKey = "_view"
	// ContextKey holds the context.Context of the current render.
	ContextKey = "_context"
)

// ErrNoView is returned by helpers that need the current view when the render
// context does not carry one.
var ErrNoView = errors.New("environment: no view bound to the render context")

// View is the part of a view that template helpers and tags call back into.
type View interface {
	Element(ctx context.Context, name string, data, opts map[string]any) (string, error)
	Cell(ctx context.Context, name string, data, opts map[string]any) (string, error)
	Fetch(name, fallback string) string
	Helper(name string) (any, bool)
}

// CurrentView returns the view bound to the render.
func CurrentView(ectx *pongo2.ExecutionContext) (View, bool) {
	if ectx == nil {
		return nil, false
	}
	view, ok := ectx.Public[ViewKey].(View)
	return view, ok && view != nil
}

// GoContext returns the context.Context of the render, or Background.
func GoContext(ectx *pongo2.ExecutionContext) context.Context {
	if ectx != nil {
		if ctx, ok := ectx.Public[ContextKey].(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}
