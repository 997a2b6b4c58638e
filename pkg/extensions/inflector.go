package extensions

import (
	"github.com/flosch/pongo2/v6"
	"github.com/go-openapi/swag"
	"github.com/gosimple/slug"
	"github.com/jinzhu/inflection"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// Inflector exposes word inflection filters.
type Inflector struct{}

// Name implements environment.Extension.
func (Inflector) Name() string { return "inflector" }

// Functions implements environment.Extension.
func (Inflector) Functions(*environment.Environment) map[string]any { return nil }

// Filters implements environment.Extension.
func (Inflector) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"pluralize":   stringFilter(inflection.Plural),
		"singularize": stringFilter(inflection.Singular),
		"camelize":    stringFilter(swag.ToGoName),
		"underscore":  stringFilter(swag.ToFileName),
		"humanize":    stringFilter(swag.ToHumanNameTitle),
		"tableize": stringFilter(func(s string) string {
			return inflection.Plural(swag.ToFileName(s))
		}),
		"classify": stringFilter(func(s string) string {
			return swag.ToGoName(inflection.Singular(s))
		}),
		"variable": stringFilter(swag.ToVarName),
		"slug":     stringFilter(slug.Make),
	}
}

// OverriddenFilters replaces pongo2's numeric pluralize suffix filter with the
// word inflection.
func (Inflector) OverriddenFilters() []string {
	return []string{"pluralize"}
}
