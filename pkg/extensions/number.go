package extensions

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// Number exposes locale-aware number formatting.
type Number struct {
	tag language.Tag
}

// NewNumber formats for locale ("en" when empty).
func NewNumber(locale string) Number {
	if strings.TrimSpace(locale) == "" {
		locale = "en"
	}
	return Number{tag: language.Make(locale)}
}

// Name implements environment.Extension.
func (Number) Name() string { return "number" }

// Functions implements environment.Extension.
func (n Number) Functions(*environment.Environment) map[string]any {
	printer := message.NewPrinter(n.tag)
	return map[string]any{
		"number_format": func(value any, precision ...any) string {
			return formatNumber(printer, pongo2.AsValue(value).Float(), argInt(precision, 0, 0))
		},
		"currency": func(value, code any) (string, error) {
			unit, err := currency.ParseISO(pongo2.AsValue(code).String())
			if err != nil {
				return "", fmt.Errorf("extensions: currency: %w", err)
			}
			return printer.Sprint(currency.Symbol(unit.Amount(pongo2.AsValue(value).Float()))), nil
		},
	}
}

// Filters implements environment.Extension. Filters are process-wide, so they
// format with the English printer.
func (Number) Filters() map[string]pongo2.FilterFunction {
	printer := message.NewPrinter(language.English)
	return map[string]pongo2.FilterFunction{
		"to_readable_size": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			size := in.Integer()
			if size < 0 {
				size = 0
			}
			return pongo2.AsValue(humanize.Bytes(uint64(size))), nil
		},
		"from_readable_size": filter("from_readable_size", func(in, _ *pongo2.Value) (any, error) {
			size, err := humanize.ParseBytes(in.String())
			if err != nil {
				return nil, err
			}
			return int(size), nil
		}),
		"to_percentage": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(fmt.Sprintf("%.*f%%", paramInt(param, 2), in.Float())), nil
		},
		"number_format": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(formatNumber(printer, in.Float(), paramInt(param, 0))), nil
		},
		"ordinal": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(humanize.Ordinal(in.Integer())), nil
		},
	}
}

func formatNumber(printer *message.Printer, value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return printer.Sprint(number.Decimal(value, number.Scale(precision)))
}
