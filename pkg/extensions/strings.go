package extensions

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
	"github.com/google/uuid"
	"github.com/valyala/fasttemplate"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/markdown"
)

const (
	ellipsis      = "..."
	excerptRadius = 100
	tailLength    = 100
	wrapWidth     = 72
)

var linkPattern = regexp.MustCompile(`(?is)<a\b[^>]*>(.*?)</a>`)

// Strings exposes text helpers.
type Strings struct{}

// Name implements environment.Extension.
func (Strings) Name() string { return "strings" }

// Functions implements environment.Extension.
func (Strings) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"uuid": func() string {
			return uuid.NewString()
		},
		"insert": func(template any, data any) string {
			values := make(map[string]any)
			for key, value := range toMap(data) {
				values[key] = fmt.Sprint(value)
			}
			return fasttemplate.ExecuteStringStd(str(template), "{", "}", values)
		},
		"to_list": func(list any, opts ...any) string {
			return toList(toSlice(list), argString(opts, 0, " and "), argString(opts, 1, ", "))
		},
	}
}

// Filters implements environment.Extension.
func (Strings) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"substr": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(substr(in.String(), paramString(param, "0"))), nil
		},
		"tokenize": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(tokenize(in.String(), paramString(param, ","))), nil
		},
		"tail": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(tail(in.String(), paramInt(param, tailLength))), nil
		},
		"excerpt": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(excerpt(in.String(), paramString(param, ""), excerptRadius)), nil
		},
		"wrap": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(wrap(in.String(), paramInt(param, wrapWidth))), nil
		},
		"highlight": func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(highlight(in.String(), paramString(param, ""))), nil
		},
		"strip_links": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(linkPattern.ReplaceAllString(in.String(), "$1")), nil
		},
		"strip_tags": stringFilter(markdown.StripTags),
		"is_multibyte": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			s := in.String()
			return pongo2.AsValue(utf8.RuneCountInString(s) != len(s)), nil
		},
		"utf8": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			runes := []rune(in.String())
			out := make([]int, len(runes))
			for i, r := range runes {
				out[i] = int(r)
			}
			return pongo2.AsValue(out), nil
		},
		"ascii": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			var b strings.Builder
			for _, item := range toSlice(in.Interface()) {
				b.WriteRune(rune(pongo2.AsValue(item).Integer()))
			}
			return pongo2.AsValue(b.String()), nil
		},
	}
}

// substr takes "start" or "start,length" in runes. A negative start counts from
// the end.
func substr(s, bounds string) string {
	runes := []rune(s)
	parts := strings.SplitN(bounds, ",", 2)
	start, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	if start < 0 {
		start = len(runes) + start
	}
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		return ""
	}
	end := len(runes)
	if len(parts) == 2 {
		if length, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			if length < 0 {
				end = len(runes) + length
			} else {
				end = start + length
			}
		}
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end <= start {
		return ""
	}
	return string(runes[start:end])
}

// tokenize splits on sep, ignoring separators inside parentheses.
func tokenize(s, sep string) []string {
	if sep == "" {
		return []string{s}
	}
	var (
		out   []string
		depth int
		buf   strings.Builder
	)
	for i := 0; i < len(s); {
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			out = append(out, strings.TrimSpace(buf.String()))
			buf.Reset()
			i += len(sep)
			continue
		}
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	return append(out, strings.TrimSpace(buf.String()))
}

// tail keeps the last length runes, prefixed with an ellipsis when cut.
func tail(s string, length int) string {
	runes := []rune(s)
	if length <= 0 || len(runes) <= length {
		return s
	}
	keep := length - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return ellipsis + string(runes[len(runes)-keep:])
}

// excerpt returns radius runes on each side of the first phrase match.
func excerpt(s, phrase string, radius int) string {
	if phrase == "" {
		return tail(s, radius*2)
	}
	idx := strings.Index(strings.ToLower(s), strings.ToLower(phrase))
	if idx < 0 {
		return ""
	}
	runes := []rune(s)
	start := utf8.RuneCountInString(s[:idx])
	end := start + utf8.RuneCountInString(phrase)

	from, to := start-radius, end+radius
	prefix, suffix := ellipsis, ellipsis
	if from <= 0 {
		from, prefix = 0, ""
	}
	if to >= len(runes) {
		to, suffix = len(runes), ""
	}
	return prefix + string(runes[from:to]) + suffix
}

// wrap breaks lines at word boundaries so none exceeds width.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// highlight escapes s and wraps case-insensitive matches of phrase.
func highlight(s, phrase string) string {
	escaped := html.EscapeString(s)
	if phrase == "" {
		return escaped
	}
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(html.EscapeString(phrase)))
	if err != nil {
		return escaped
	}
	return pattern.ReplaceAllString(escaped, `<span class="highlight">$0</span>`)
}

func toList(items []any, and, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], sep) + and + parts[len(parts)-1]
}
