package extensions

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// Basic exposes debugging helpers and short aliases for common string
// operations.
type Basic struct{}

// Name implements environment.Extension.
func (Basic) Name() string { return "basic" }

// Functions implements environment.Extension.
func (Basic) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"env": func(name any, fallback ...any) string {
			if value, ok := os.LookupEnv(fmt.Sprint(name)); ok {
				return value
			}
			return argString(fallback, 0, "")
		},
		"debug": func(value any) *pongo2.Value {
			return pongo2.AsSafeValue("<pre>" + html.EscapeString(fmt.Sprintf("%#v", value)) + "</pre>")
		},
		"pr": func(value any) *pongo2.Value {
			return pongo2.AsSafeValue("<pre>" + html.EscapeString(fmt.Sprintf("%+v", value)) + "</pre>")
		},
	}
}

// Filters implements environment.Extension.
func (Basic) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"low": stringFilter(strings.ToLower),
		"up":  stringFilter(strings.ToUpper),
		"h": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(html.EscapeString(in.String())), nil
		},
		"count": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(in.Len()), nil
		},
		"null": func(_, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(""), nil
		},
		"env": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			if value, ok := os.LookupEnv(in.String()); ok {
				return pongo2.AsValue(value), nil
			}
			return pongo2.AsValue(paramString(param, "")), nil
		},
	}
}
