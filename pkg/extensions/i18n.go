package extensions

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/framework"
)

// LocaleKey is the field or map key current_locale reads from structured
// arguments.
const LocaleKey = "locale"

// I18n exposes the translation functions.
//
//	{{ __("Hello {0}", user.name) }}
//	{{ __d("admin", "Save") }}
//	{{ __n("{0} file", "{0} files", count, count) }}
//	{{ __dn("admin", "{0} user", "{0} users", n, n) }}
//	{{ __x("menu", "Open") }}
//
// When no translator is configured the message id is formatted and returned.
type I18n struct {
	translator framework.Translator
}

// NewI18n wraps translator.
func NewI18n(translator framework.Translator) I18n {
	return I18n{translator: translator}
}

// Name implements environment.Extension.
func (I18n) Name() string { return "i18n" }

// Functions implements environment.Extension.
func (i I18n) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"__": func(singular any, args ...any) string {
			return i.translate(framework.Message{Singular: str(singular), Args: args})
		},
		"__d": func(domain, singular any, args ...any) string {
			return i.translate(framework.Message{Domain: str(domain), Singular: str(singular), Args: args})
		},
		"__n": func(singular, plural, count any, args ...any) string {
			return i.translate(framework.Message{
				Singular: str(singular),
				Plural:   str(plural),
				Count:    pongo2.AsValue(count).Integer(),
				Args:     args,
			})
		},
		"__dn": func(domain, singular, plural, count any, args ...any) string {
			return i.translate(framework.Message{
				Domain:   str(domain),
				Singular: str(singular),
				Plural:   str(plural),
				Count:    pongo2.AsValue(count).Integer(),
				Args:     args,
			})
		},
		"__x": func(context, singular any, args ...any) string {
			return i.translate(framework.Message{Context: str(context), Singular: str(singular), Args: args})
		},
		"current_locale": func(src ...any) string {
			if len(src) > 0 {
				if locale := resolveLocale(src[0], LocaleKey); locale != "" {
					return locale
				}
			}
			if i.translator == nil {
				return ""
			}
			return i.translator.Locale()
		},
	}
}

// Filters implements environment.Extension.
func (I18n) Filters() map[string]pongo2.FilterFunction { return nil }

// translate never fails: a missing translator or entry yields the formatted
// message id.
func (i I18n) translate(msg framework.Message) string {
	if strings.TrimSpace(msg.Singular) == "" {
		return ""
	}
	if i.translator == nil {
		text := msg.Singular
		if msg.Plural != "" && msg.Count != 1 {
			text = msg.Plural
		}
		return framework.FormatMessage(text, msg.Args...)
	}
	out, err := i.translator.Translate(msg)
	if err != nil && strings.TrimSpace(out) == "" {
		return framework.FormatMessage(msg.Singular, msg.Args...)
	}
	return out
}

func str(value any) string {
	return pongo2.AsValue(value).String()
}

func resolveLocale(src any, key string) string {
	if src == nil {
		return ""
	}
	if v, ok := src.(*pongo2.Value); ok {
		src = v.Interface()
	}
	if s, ok := src.(string); ok {
		return s
	}

	switch data := src.(type) {
	case map[string]any:
		if v, ok := data[key]; ok {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	case map[string]string:
		return data[key]
	}

	value := reflect.ValueOf(src)
	for value.IsValid() && value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return ""
		}
		value = value.Elem()
	}
	if !value.IsValid() || value.Kind() != reflect.Struct {
		return ""
	}
	field := value.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, key)
	})
	if field.IsValid() && field.Kind() == reflect.String {
		return field.String()
	}
	return ""
}
