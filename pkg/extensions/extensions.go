// Package extensions provides the template function and filter tables exposed
// to pongo2 templates. Every provider forwards to a framework service or a
// library call.
package extensions

import (
	"fmt"
	"reflect"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/framework"
)

// Deps are the framework services the providers forward to. Every field is
// optional.
type Deps struct {
	Settings   framework.Configuration
	Translator framework.Translator
	// Locale drives number and currency formatting. Defaults to "en".
	Locale string
	// Now overrides the clock used by the now() function.
	Now func() time.Time
}

// Defaults returns every provider in registration order.
func Defaults(deps Deps) []environment.Extension {
	return []environment.Extension{
		Basic{},
		Arrays{},
		NewConfigure(deps.Settings),
		NewI18n(deps.Translator),
		Inflector{},
		NewNumber(deps.Locale),
		Strings{},
		NewTime(deps.Now),
		Utils{},
		View{},
		Markdown{},
	}
}

// filter adapts fn to a pongo2 filter. Errors carry the filter name as sender.
func filter(name string, fn func(in, param *pongo2.Value) (any, error)) pongo2.FilterFunction {
	return func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		out, err := fn(in, param)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		if value, ok := out.(*pongo2.Value); ok {
			return value, nil
		}
		return pongo2.AsValue(out), nil
	}
}

// stringFilter adapts a string transformation.
func stringFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	}
}

func hasParam(param *pongo2.Value) bool {
	return param != nil && !param.IsNil()
}

func paramString(param *pongo2.Value, fallback string) string {
	if !hasParam(param) {
		return fallback
	}
	return param.String()
}

func paramInt(param *pongo2.Value, fallback int) int {
	if !hasParam(param) {
		return fallback
	}
	return param.Integer()
}

func argInt(args []any, idx, fallback int) int {
	if idx >= len(args) || args[idx] == nil {
		return fallback
	}
	return pongo2.AsValue(args[idx]).Integer()
}

func argString(args []any, idx int, fallback string) string {
	if idx >= len(args) || args[idx] == nil {
		return fallback
	}
	return pongo2.AsValue(args[idx]).String()
}

func argMap(args []any, idx int) map[string]any {
	if idx >= len(args) {
		return nil
	}
	return toMap(args[idx])
}

// toSlice converts slices and arrays to []any. Scalars become a one element
// slice and nil an empty one.
func toSlice(value any) []any {
	if value == nil {
		return []any{}
	}
	if v, ok := value.(*pongo2.Value); ok {
		value = v.Interface()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		out := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out = append(out, iter.Value().Interface())
		}
		return out
	default:
		return []any{value}
	}
}

// toMap converts maps with string-like keys to map[string]any.
func toMap(value any) map[string]any {
	if value == nil {
		return nil
	}
	if v, ok := value.(*pongo2.Value); ok {
		value = v.Interface()
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}
