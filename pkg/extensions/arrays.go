package extensions

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// Arrays exposes list and map helpers.
type Arrays struct{}

// Name implements environment.Extension.
func (Arrays) Name() string { return "arrays" }

// Functions implements environment.Extension.
func (Arrays) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"in_array": func(needle, haystack any) bool {
			return inArray(needle, haystack)
		},
		"explode": func(delimiter, value any, limit ...any) []string {
			return explode(pongo2.AsValue(delimiter).String(), pongo2.AsValue(value).String(), argInt(limit, 0, -1))
		},
		"array": func(value any) []any {
			return toSlice(value)
		},
		"array_push": func(list any, values ...any) []any {
			return append(toSlice(list), values...)
		},
		"array_add": func(data, key, value any) map[string]any {
			out := make(map[string]any)
			for k, v := range toMap(data) {
				out[k] = v
			}
			out[pongo2.AsValue(key).String()] = value
			return out
		},
		"array_key_exists": func(key, data any) bool {
			_, ok := toMap(data)[pongo2.AsValue(key).String()]
			return ok
		},
		"hash_get": func(data, path any, fallback ...any) any {
			if value, ok := dig(data, pongo2.AsValue(path).String()); ok {
				return value
			}
			if len(fallback) > 0 {
				return fallback[0]
			}
			return nil
		},
	}
}

// Filters implements environment.Extension.
func (Arrays) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"in_array": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			var haystack any
			if param != nil {
				haystack = param.Interface()
			}
			return pongo2.AsValue(inArray(in.Interface(), haystack)), nil
		},
		"explode": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(explode(paramString(param, ","), in.String(), -1)), nil
		},
	}
}

func inArray(needle, haystack any) bool {
	want := pongo2.AsValue(needle)
	for _, item := range toSlice(haystack) {
		if want.EqualValueTo(pongo2.AsValue(item)) {
			return true
		}
	}
	return false
}

func explode(delimiter, value string, limit int) []string {
	if delimiter == "" {
		return []string{value}
	}
	if limit == 0 {
		limit = 1
	}
	return strings.SplitN(value, delimiter, limit)
}

// dig follows a dotted path through maps and slices.
func dig(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			continue
		}
		if v, ok := current.(*pongo2.Value); ok {
			current = v.Interface()
		}
		rv := reflect.ValueOf(current)
		switch rv.Kind() {
		case reflect.Map:
			m := toMap(current)
			value, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = value
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= rv.Len() {
				return nil, false
			}
			current = rv.Index(idx).Interface()
		default:
			return nil, false
		}
	}
	return current, true
}
