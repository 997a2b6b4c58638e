package framework

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultDomain is used when a message does not name a domain.
const DefaultDomain = "default"

// ContextSeparator joins a message context and its id in catalog keys.
const ContextSeparator = "::"

// ErrMissingTranslation is returned when the catalog has no entry for a
// message. Callers usually fall back to the message id.
var ErrMissingTranslation = errors.New("framework: missing translation")

// Message describes a single translation lookup.
type Message struct {
	Locale   string
	Domain   string
	Context  string
	Singular string
	Plural   string
	Count    int
	Args     []any
}

// Translator resolves messages for the i18n helpers.
type Translator interface {
	Translate(msg Message) (string, error)
	Locale() string
}

type entry struct {
	One   string
	Other string
}

// UnmarshalYAML accepts either a scalar or a {one, other} mapping.
func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.One = node.Value
		return nil
	}
	var forms struct {
		One   string `yaml:"one"`
		Other string `yaml:"other"`
	}
	if err := node.Decode(&forms); err != nil {
		return err
	}
	e.One, e.Other = forms.One, forms.Other
	return nil
}

// Catalog is a Translator backed by YAML message files laid out as
// <root>/<locale>/<domain>.yaml.
type Catalog struct {
	mu       sync.RWMutex
	locale   string
	locales  []string
	messages map[string]map[string]map[string]entry
}

var _ Translator = (*Catalog)(nil)

// NewCatalog creates an empty catalog whose active locale is locale.
func NewCatalog(locale string) *Catalog {
	c := &Catalog{
		locale:   strings.TrimSpace(locale),
		messages: make(map[string]map[string]map[string]entry),
	}
	if c.locale != "" {
		c.locales = append(c.locales, c.locale)
	}
	return c
}

// Add registers singular messages for locale and domain.
func (c *Catalog) Add(locale, domain string, messages map[string]string) {
	entries := make(map[string]entry, len(messages))
	for key, value := range messages {
		entries[key] = entry{One: value}
	}
	c.add(locale, domain, entries)
}

// AddPlural registers a message with singular and plural forms.
func (c *Catalog) AddPlural(locale, domain, key, one, other string) {
	c.add(locale, domain, map[string]entry{key: {One: one, Other: other}})
}

func (c *Catalog) add(locale, domain string, entries map[string]entry) {
	locale = strings.TrimSpace(locale)
	if domain == "" {
		domain = DefaultDomain
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	domains, ok := c.messages[locale]
	if !ok {
		domains = make(map[string]map[string]entry)
		c.messages[locale] = domains
		if !contains(c.locales, locale) {
			c.locales = append(c.locales, locale)
		}
	}
	target, ok := domains[domain]
	if !ok {
		target = make(map[string]entry, len(entries))
		domains[domain] = target
	}
	for key, value := range entries {
		target[key] = value
	}
}

// LoadFS walks root inside fsys and loads every <locale>/<domain>.yaml file.
func (c *Catalog) LoadFS(fsys fs.FS, root string) error {
	if fsys == nil {
		return errors.New("framework: catalog filesystem is required")
	}
	if root == "" {
		root = "."
	}
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		locale := path.Base(path.Dir(p))
		domain := strings.TrimSuffix(path.Base(p), ext)

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("framework: read catalog %s: %w", p, err)
		}
		entries := map[string]entry{}
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("framework: parse catalog %s: %w", p, err)
		}
		c.add(locale, domain, entries)
		return nil
	})
}

// Locale returns the active locale.
func (c *Catalog) Locale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

// SetLocale changes the active locale.
func (c *Catalog) SetLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locale = strings.TrimSpace(locale)
}

// Locales lists known locales in sorted order.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := append([]string(nil), c.locales...)
	sort.Strings(out)
	return out
}

// Match picks the best known locale for the preferred tags (for example the
// values of an Accept-Language header).
func (c *Catalog) Match(preferred ...string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.locales) == 0 {
		return c.locale
	}
	supported := make([]language.Tag, 0, len(c.locales))
	for _, locale := range c.locales {
		supported = append(supported, language.Make(locale))
	}
	desired := make([]language.Tag, 0, len(preferred))
	for _, p := range preferred {
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		desired = append(desired, tags...)
	}
	_, idx, confidence := language.NewMatcher(supported).Match(desired...)
	if confidence == language.No {
		return c.locales[0]
	}
	return c.locales[idx]
}

// Translate looks up msg and substitutes {0}, {1} and {name} placeholders.
// When no entry exists the message id is formatted and ErrMissingTranslation
// is returned alongside it.
func (c *Catalog) Translate(msg Message) (string, error) {
	locale := msg.Locale
	if locale == "" {
		locale = c.Locale()
	}
	domain := msg.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	key := msg.Singular
	if msg.Context != "" {
		key = msg.Context + ContextSeparator + msg.Singular
	}

	c.mu.RLock()
	found, ok := c.messages[locale][domain][key]
	c.mu.RUnlock()

	text := pickForm(msg, found, ok)
	out := FormatMessage(text, msg.Args...)
	if !ok {
		return out, ErrMissingTranslation
	}
	return out, nil
}

func pickForm(msg Message, found entry, ok bool) string {
	plural := msg.Plural != "" && msg.Count != 1
	if !ok {
		if plural {
			return msg.Plural
		}
		return msg.Singular
	}
	if plural && found.Other != "" {
		return found.Other
	}
	return found.One
}

// FormatMessage replaces positional {0} placeholders with args. A single map
// argument also provides named {key} placeholders.
func FormatMessage(text string, args ...any) string {
	if len(args) == 0 || !strings.Contains(text, "{") {
		return text
	}
	values := make(map[string]any, len(args))
	for i, arg := range args {
		values[strconv.Itoa(i)] = fmt.Sprint(arg)
	}
	if len(args) == 1 {
		if named, ok := args[0].(map[string]any); ok {
			for key, value := range named {
				values[key] = fmt.Sprint(value)
			}
		}
	}
	return fasttemplate.ExecuteStringStd(text, "{", "}", values)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
