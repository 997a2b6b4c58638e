// Package view adapts the host framework's view lifecycle to pongo2: it
// resolves template, layout and element files across the candidate suffixes
// and evaluates them through the shared environment.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pongoview/internal/logging"
	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/framework"
	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/profiler"
)

// ContentBlock receives the rendered template before the layout runs.
const ContentBlock = "content"

var (
	// ErrEnvironmentNotConstructed is returned when a view evaluates a file
	// without an environment.
	ErrEnvironmentNotConstructed = errors.New("view: environment not constructed")
	// ErrNoCellRenderer is returned by Cell when no cells are configured.
	ErrNoCellRenderer = errors.New("view: no cell renderer configured")
)

// ThemeSelector resolves a theme name and variant into a go-theme selection.
type ThemeSelector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

// Option configures a View.
type Option func(*View)

// WithEnvironment binds the environment used for evaluation.
func WithEnvironment(env *environment.Environment) Option {
	return func(v *View) {
		v.env = env
	}
}

// WithConventions sets the path rules.
func WithConventions(conv paths.Conventions) Option {
	return func(v *View) {
		v.conv = conv
	}
}

// WithExtensions sets the ordered candidate suffix list.
func WithExtensions(exts ...string) Option {
	return func(v *View) {
		if normalized := config.NormalizeExtensions(exts); len(normalized) > 0 {
			v.extensions = normalized
		}
	}
}

// WithCells sets the cell registry used by Cell.
func WithCells(cells *framework.CellRegistry) Option {
	return func(v *View) {
		v.cells = cells
	}
}

// WithThemeSelector sets the selector used by SetTheme.
func WithThemeSelector(selector ThemeSelector) Option {
	return func(v *View) {
		v.themes = selector
	}
}

// WithTemplatePath sets the directory for bare template names.
func WithTemplatePath(dir string) Option {
	return func(v *View) {
		v.templatePath = dir
	}
}

// WithLayout sets the default layout.
func WithLayout(name string) Option {
	return func(v *View) {
		v.layout = name
	}
}

// WithPlugin sets the plugin used for names without a plugin prefix.
func WithPlugin(name string) Option {
	return func(v *View) {
		v.plugin = name
	}
}

// WithVars seeds view variables.
func WithVars(vars map[string]any) Option {
	return func(v *View) {
		for key, value := range vars {
			v.vars[key] = value
		}
	}
}

// WithLogger sets the view logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// View holds the per-request view state: variables, helpers, blocks and the
// template path settings. It is safe for concurrent use, but a View normally
// serves a single request.
type View struct {
	mu sync.RWMutex

	env        *environment.Environment
	conv       paths.Conventions
	extensions []string
	cells      *framework.CellRegistry
	themes     ThemeSelector
	logger     *slog.Logger

	vars    map[string]any
	helpers map[string]any
	blocks  map[string]string

	layout       string
	templatePath string
	plugin       string
}

var (
	_ environment.View       = (*View)(nil)
	_ framework.CellRenderer = (*View)(nil)
)

// New creates a view. Factory.NewView is the usual entry point.
func New(opts ...Option) *View {
	v := &View{
		extensions: config.Defaults().Extensions,
		logger:     logging.Discard(),
		vars:       make(map[string]any),
		helpers:    make(map[string]any),
		blocks:     make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Environment returns the bound environment, or nil.
func (v *View) Environment() *environment.Environment {
	return v.env
}

// Set stores a view variable.
func (v *View) Set(name string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vars[name] = value
}

// Get returns a view variable.
func (v *View) Get(name string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.vars[name]
	return value, ok
}

// Vars returns a copy of the view variables.
func (v *View) Vars() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]any, len(v.vars))
	for key, value := range v.vars {
		out[key] = value
	}
	return out
}

// SetHelper registers a helper visible to every evaluation of this view.
func (v *View) SetHelper(name string, helper any) error {
	if !environment.ValidIdentifier(name) {
		return fmt.Errorf("view: invalid helper name %q", name)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.helpers[name] = helper
	return nil
}

// Helper returns a registered helper.
func (v *View) Helper(name string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	helper, ok := v.helpers[name]
	return helper, ok
}

// Helpers lists helper names in sorted order.
func (v *View) Helpers() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.helpers))
	for name := range v.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assign replaces the content of a block.
func (v *View) Assign(name, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.blocks[name] = content
}

// Append adds content to the end of a block.
func (v *View) Append(name, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.blocks[name] += content
}

// Fetch returns the content of a block, or fallback when it is unset.
func (v *View) Fetch(name, fallback string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if content, ok := v.blocks[name]; ok {
		return content
	}
	return fallback
}

// SetLayout changes the default layout. An empty name disables it.
func (v *View) SetLayout(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.layout = name
}

// Layout returns the default layout.
func (v *View) Layout() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.layout
}

// SetTemplatePath changes the directory for bare template names.
func (v *View) SetTemplatePath(dir string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.templatePath = dir
}

// SetPlugin changes the plugin used for names without a plugin prefix.
func (v *View) SetPlugin(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.plugin = name
}

// SetTheme switches the theme. With a selector configured the theme manifest
// is loaded so its template overrides apply; otherwise only the theme's
// template root is searched. An empty name clears the theme.
//
// The change covers templates, layouts and elements resolved by this view.
// {% include %} and {% extends %} go through the shared environment loader
// and keep resolving against the factory's theme.
func (v *View) SetTheme(name, variant string) error {
	var selection *theme.Selection
	if name != "" && v.themes != nil {
		sel, err := v.themes.Select(name, variant)
		if err != nil {
			return fmt.Errorf("view: select theme %q: %w", name, err)
		}
		selection = sel
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.conv.Theme = name
	v.conv.Selection = selection
	return nil
}

// Render evaluates template into the content block and wraps it in layout.
// An empty layout falls back to the view's default; when that is empty too
// the template output is returned as is.
func (v *View) Render(ctx context.Context, template, layout string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", errors.New("view: template name is required")
	}
	file, err := v.TemplateFile(template)
	if err != nil {
		return "", err
	}
	content, err := v.evaluate(ctx, profiler.KindTemplate, file, nil)
	if err != nil {
		return "", err
	}
	v.Assign(ContentBlock, content)

	if layout == "" {
		layout = v.Layout()
	}
	if layout == "" {
		return content, nil
	}
	layoutFile, err := v.LayoutFile(layout)
	if err != nil {
		return "", err
	}
	return v.evaluate(ctx, profiler.KindLayout, layoutFile, nil)
}

// Evaluate renders a resolved file. The view is bound under the _view key and
// data is layered over the view variables, which are layered over helpers.
func (v *View) Evaluate(ctx context.Context, file string, data map[string]any) (string, error) {
	return v.evaluate(ctx, profiler.KindTemplate, file, data)
}

func (v *View) evaluate(ctx context.Context, kind, file string, data map[string]any) (string, error) {
	if v.env == nil {
		return "", ErrEnvironmentNotConstructed
	}

	v.mu.RLock()
	merged := make(map[string]any, len(v.helpers)+len(v.vars)+len(data)+1)
	for key, helper := range v.helpers {
		merged[key] = helper
	}
	for key, value := range v.vars {
		merged[key] = value
	}
	v.mu.RUnlock()

	for key, value := range data {
		merged[key] = value
	}
	merged[environment.ViewKey] = v

	return v.env.Render(ctx, kind, file, merged)
}

// TemplateFile resolves name against every candidate suffix in order.
func (v *View) TemplateFile(name string) (string, error) {
	return v.resolve(name, func(b Base) (string, error) { return b.TemplateFile(name) })
}

// LayoutFile resolves a layout against every candidate suffix in order.
func (v *View) LayoutFile(name string) (string, error) {
	return v.resolve(name, func(b Base) (string, error) { return b.LayoutFile(name) })
}

// ElementFile resolves an element against every candidate suffix in order and
// reports false when none matches.
func (v *View) ElementFile(name string) (string, bool) {
	file, _, ok := v.elementFile(name, "")
	return file, ok
}

func (v *View) elementFile(name, plugin string) (string, []string, bool) {
	var searched []string
	for _, b := range v.bases() {
		if plugin != "" {
			b.Plugin = plugin
		}
		file, tried, ok := b.elementFile(name)
		if ok {
			return file, nil, true
		}
		searched = append(searched, tried...)
	}
	return "", searched, false
}

// resolve runs find for each suffix. Not-found errors are remembered and the
// next suffix is tried; the final error names the requested name and every
// searched path.
func (v *View) resolve(name string, find func(Base) (string, error)) (string, error) {
	var (
		lastErr  error
		searched []string
	)
	for _, b := range v.bases() {
		file, err := find(b)
		if err == nil {
			return file, nil
		}
		var (
			missingTemplate *paths.MissingTemplateError
			missingLayout   *paths.MissingLayoutError
		)
		switch {
		case errors.As(err, &missingTemplate):
			searched = append(searched, missingTemplate.Paths...)
			lastErr = &paths.MissingTemplateError{Name: name, Paths: searched}
		case errors.As(err, &missingLayout):
			searched = append(searched, missingLayout.Paths...)
			lastErr = &paths.MissingLayoutError{Name: name, Paths: searched}
		default:
			return "", err
		}
	}
	if lastErr == nil {
		lastErr = &paths.MissingTemplateError{Name: name}
	}
	v.logger.Debug("view file not found", slog.String("name", name), slog.Any("searched", searched))
	return "", lastErr
}

func (v *View) bases() []Base {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Base, 0, len(v.extensions))
	for _, ext := range v.extensions {
		out = append(out, Base{
			Conventions:  v.conv,
			Extension:    ext,
			Plugin:       v.plugin,
			TemplatePath: v.templatePath,
		})
	}
	return out
}

// Element renders an element with the view variables and data. Recognised
// options: "plugin" (string) resolves the element in another plugin and
// "ignoreMissing" (bool) turns a missing element into empty output.
func (v *View) Element(ctx context.Context, name string, data, opts map[string]any) (string, error) {
	plugin, _ := opts["plugin"].(string)
	file, searched, ok := v.elementFile(name, plugin)
	if !ok {
		if ignore, _ := opts["ignoreMissing"].(bool); ignore {
			return "", nil
		}
		return "", &paths.MissingElementError{Name: name, Paths: searched}
	}
	return v.evaluate(ctx, profiler.KindElement, file, data)
}

// Cell runs a registered cell and renders its template with the variables it
// returned. The cell's variables replace the view variables for that render.
func (v *View) Cell(ctx context.Context, name string, data, opts map[string]any) (string, error) {
	if v.cells == nil {
		return "", ErrNoCellRenderer
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cell, cellName, action, err := v.cells.Lookup(name)
	if err != nil {
		return "", err
	}
	vars, template, err := cell(ctx, framework.CellRequest{
		Name:    cellName,
		Action:  action,
		Data:    data,
		Options: opts,
	})
	if err != nil {
		return "", fmt.Errorf("view: cell %q: %w", name, err)
	}
	if template == "" {
		template = "/" + paths.CellKey(cellName, action)
	}

	file, err := v.TemplateFile(template)
	if err != nil {
		return "", err
	}

	cellView := v.child(vars)
	return cellView.evaluate(ctx, profiler.KindCell, file, nil)
}

// child returns a view sharing this view's environment, resolution settings
// and helpers but holding vars as its variables.
func (v *View) child(vars map[string]any) *View {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c := &View{
		env:          v.env,
		conv:         v.conv,
		extensions:   v.extensions,
		cells:        v.cells,
		themes:       v.themes,
		logger:       v.logger,
		vars:         make(map[string]any, len(vars)),
		helpers:      make(map[string]any, len(v.helpers)),
		blocks:       make(map[string]string),
		templatePath: v.templatePath,
		plugin:       v.plugin,
	}
	for key, value := range vars {
		c.vars[key] = value
	}
	for key, helper := range v.helpers {
		c.helpers[key] = helper
	}
	return c
}
