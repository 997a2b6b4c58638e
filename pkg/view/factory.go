package view

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-pongoview/internal/logging"
	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/extensions"
	"github.com/goliatone/go-pongoview/pkg/framework"
	"github.com/goliatone/go-pongoview/pkg/loader"
	"github.com/goliatone/go-pongoview/pkg/markdown"
	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/profiler"
	"github.com/goliatone/go-pongoview/pkg/tags"
)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithConfig layers cfg over config.Defaults.
func WithConfig(cfg config.Config) FactoryOption {
	return func(f *Factory) {
		f.cfg = config.Merge(f.cfg, cfg)
	}
}

// WithFS sets the filesystem templates are read from. It is required.
func WithFS(fsys fs.FS) FactoryOption {
	return func(f *Factory) {
		f.fsys = fsys
	}
}

// WithPlugins sets the plugin registry used for Plugin.name resolution.
func WithPlugins(plugins paths.PluginLocator) FactoryOption {
	return func(f *Factory) {
		f.plugins = plugins
	}
}

// WithSettings exposes application settings to config().
func WithSettings(settings framework.Configuration) FactoryOption {
	return func(f *Factory) {
		f.deps.Settings = settings
	}
}

// WithTranslator sets the translator used by the i18n functions.
func WithTranslator(translator framework.Translator) FactoryOption {
	return func(f *Factory) {
		f.deps.Translator = translator
	}
}

// WithLocale sets the locale used for number formatting.
func WithLocale(locale string) FactoryOption {
	return func(f *Factory) {
		f.deps.Locale = locale
	}
}

// WithClock overrides the clock behind now().
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.deps.Now = now
	}
}

// WithCellRegistry sets the cells views can render.
func WithCellRegistry(cells *framework.CellRegistry) FactoryOption {
	return func(f *Factory) {
		f.cells = cells
	}
}

// WithTheme selects the theme applied to the environment loader and to new
// views. selector may be nil, in which case only the theme root is searched.
func WithTheme(selector ThemeSelector, name, variant string) FactoryOption {
	return func(f *Factory) {
		f.themes = selector
		f.theme = name
		f.variant = variant
	}
}

// WithProfiler collects render profiles when debug is enabled.
func WithProfiler(p *profiler.Profiler) FactoryOption {
	return func(f *Factory) {
		f.profiler = p
	}
}

// WithFactoryLogger sets the logger for the factory, environment and views.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithTracer overrides the tracer. Defaults to the global otel provider.
func WithTracer(tracer trace.Tracer) FactoryOption {
	return func(f *Factory) {
		f.tracer = tracer
	}
}

// WithEnvironmentOptions appends raw environment options such as extra
// extensions, globals or runtime loaders.
func WithEnvironmentOptions(opts ...environment.Option) FactoryOption {
	return func(f *Factory) {
		f.envOpts = append(f.envOpts, opts...)
	}
}

// Factory builds the shared environment once and hands out views bound to it.
type Factory struct {
	cfg      config.Config
	fsys     fs.FS
	plugins  paths.PluginLocator
	deps     extensions.Deps
	cells    *framework.CellRegistry
	themes   ThemeSelector
	theme    string
	variant  string
	profiler *profiler.Profiler
	logger   *slog.Logger
	tracer   trace.Tracer
	envOpts  []environment.Option

	once   sync.Once
	env    *environment.Environment
	conv   paths.Conventions
	exts   []string
	err    error
	builds atomic.Int32
}

// NewFactory configures a factory. The environment is built on first use.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{cfg: config.Defaults()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.tracer == nil {
		f.tracer = otel.Tracer(environment.TracerName)
	}
	return f
}

// Config returns the merged configuration.
func (f *Factory) Config() config.Config {
	return f.cfg
}

// Environment returns the shared environment, building it on the first call.
// A construction error is returned on every later call as well.
func (f *Factory) Environment(ctx context.Context) (*environment.Environment, error) {
	f.once.Do(func() {
		f.env, f.err = f.build(ctx)
	})
	return f.env, f.err
}

// Builds reports how many times the environment was constructed.
func (f *Factory) Builds() int {
	return int(f.builds.Load())
}

func (f *Factory) build(ctx context.Context) (*environment.Environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := f.tracer.Start(ctx, "pongoview.environment")
	defer span.End()

	logger := f.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	env, err := f.construct(logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "construct")
		logger.Error("environment construction failed", slog.Any("error", err))
		return nil, err
	}
	f.builds.Add(1)
	span.SetAttributes(attribute.StringSlice("pongoview.extensions", f.exts))
	return env, nil
}

func (f *Factory) construct(logger *slog.Logger) (*environment.Environment, error) {
	if f.fsys == nil {
		return nil, errors.New("view: template filesystem is required")
	}
	if err := tags.Register(); err != nil {
		return nil, err
	}

	conv := paths.Conventions{
		FS:      f.fsys,
		Root:    f.cfg.Root,
		Plugins: f.plugins,
		Theme:   f.theme,
	}
	if f.theme != "" && f.themes != nil {
		selection, err := f.themes.Select(f.theme, f.variant)
		if err != nil {
			return nil, fmt.Errorf("view: select theme %q: %w", f.theme, err)
		}
		conv.Selection = selection
	}

	exts := config.NormalizeExtensions(f.cfg.Extensions)
	if len(exts) == 0 {
		exts = config.Defaults().Extensions
	}
	l, err := loader.New(conv, exts)
	if err != nil {
		return nil, err
	}

	opts := []environment.Option{
		environment.WithConfig(f.cfg),
		environment.WithLoader(l),
		environment.WithLogger(logger),
		environment.WithTracer(f.tracer),
		environment.WithProfiler(f.profiler),
		environment.WithExtensions(extensions.Defaults(f.deps)...),
	}
	if engine := f.cfg.MarkdownEngine(); engine != nil {
		opts = append(opts, environment.WithRuntimeLoader(markdown.NewRuntimeLoader(engine)))
	}
	opts = append(opts, f.envOpts...)

	env, err := environment.New(opts...)
	if err != nil {
		return nil, err
	}
	f.conv = conv
	f.exts = exts
	f.logger = logger
	return env, nil
}

// NewView returns a view bound to the shared environment and the factory's
// path settings.
func (f *Factory) NewView(opts ...Option) (*View, error) {
	env, err := f.Environment(context.Background())
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithEnvironment(env),
		WithConventions(f.conv),
		WithExtensions(f.exts...),
		WithCells(f.cells),
		WithThemeSelector(f.themes),
		WithLogger(f.logger),
	}
	return New(append(base, opts...)...), nil
}
