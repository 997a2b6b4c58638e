// Package environment owns the shared pongo2 template set used by every view:
// engine options, extension registration, runtime loaders, profiling and
// tracing.
package environment

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flosch/pongo2/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-pongoview/internal/logging"
	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/profiler"
)

// TracerName identifies spans created by this module.
const TracerName = "github.com/goliatone/go-pongoview"

// Option configures the environment before construction.
type Option func(*options)

type options struct {
	cfg        config.Config
	loader     pongo2.TemplateLoader
	extensions []Extension
	runtimes   []RuntimeLoader
	profiler   *profiler.Profiler
	logger     *slog.Logger
	tracer     trace.Tracer
	globals    map[string]any
}

// WithConfig sets the configuration bag.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLoader sets the template loader. It is required.
func WithLoader(loader pongo2.TemplateLoader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// WithExtensions registers extensions in order once the template set exists.
func WithExtensions(exts ...Extension) Option {
	return func(o *options) {
		for _, ext := range exts {
			if ext != nil {
				o.extensions = append(o.extensions, ext)
			}
		}
	}
}

// WithRuntimeLoader adds a lazy runtime provider.
func WithRuntimeLoader(loader RuntimeLoader) Option {
	return func(o *options) {
		if loader != nil {
			o.runtimes = append(o.runtimes, loader)
		}
	}
}

// WithProfiler supplies a profiler. It is attached only in debug mode.
func WithProfiler(p *profiler.Profiler) Option {
	return func(o *options) {
		o.profiler = p
	}
}

// WithLogger sets the logger used for environment events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer overrides the tracer. Defaults to the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(values map[string]any) Option {
	return func(o *options) {
		if len(values) == 0 {
			return
		}
		if o.globals == nil {
			o.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			o.globals[key] = value
		}
	}
}

// Environment is the configured engine runtime shared across renders.
type Environment struct {
	mu sync.RWMutex

	set        *pongo2.TemplateSet
	cfg        config.Config
	extensions *Registry
	runtimes   []RuntimeLoader
	profiler   *profiler.Profiler
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New builds an environment. The loader option is required.
func New(opts ...Option) (*Environment, error) {
	o := &options{cfg: config.Defaults()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.loader == nil {
		return nil, errors.New("environment: template loader is required")
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(TracerName)
	}

	set := pongo2.NewSet("pongoview", o.loader)
	set.Options.TrimBlocks = o.cfg.Environment.TrimBlocks
	set.Options.LStripBlocks = o.cfg.Environment.LStripBlocks
	set.Globals = make(pongo2.Context)

	env := &Environment{
		set:        set,
		cfg:        o.cfg,
		extensions: NewRegistry(),
		runtimes:   append([]RuntimeLoader(nil), o.runtimes...),
		logger:     o.logger,
		tracer:     o.tracer,
	}
	if o.cfg.Environment.Debug && o.profiler != nil {
		env.profiler = o.profiler
	}

	registerDefaultFilters()

	for key, value := range o.globals {
		if err := env.SetGlobal(key, value); err != nil {
			return nil, err
		}
	}
	for _, ext := range o.extensions {
		if err := env.AddExtension(ext); err != nil {
			return nil, err
		}
	}

	env.logger.Debug("environment constructed",
		slog.Bool("debug", o.cfg.Environment.Debug),
		slog.Bool("cache", o.cfg.CacheEnabled()),
		slog.Bool("profiler", env.profiler != nil),
		slog.Any("extensions", env.extensions.List()),
	)
	return env, nil
}

// SetGlobal exposes value to every template under name.
func (e *Environment) SetGlobal(name string, value any) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("environment: invalid global name %q", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set.Globals[name] = value
	return nil
}

// Global returns the value registered under name.
func (e *Environment) Global(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	value, ok := e.set.Globals[name]
	return value, ok
}

// Config returns the configuration the environment was built with.
func (e *Environment) Config() config.Config {
	return e.cfg
}

// Charset reports the configured output charset.
func (e *Environment) Charset() string {
	return e.cfg.Environment.Charset
}

// Debug reports whether debug mode is enabled.
func (e *Environment) Debug() bool {
	return e.cfg.Environment.Debug
}

// Profiler returns the attached profiler, if any.
func (e *Environment) Profiler() (*profiler.Profiler, bool) {
	return e.profiler, e.profiler != nil
}

// Extensions lists registered extension names.
func (e *Environment) Extensions() []string {
	return e.extensions.List()
}

// HasExtension reports whether an extension with name was added.
func (e *Environment) HasExtension(name string) bool {
	return e.extensions.Has(name)
}

// Logger returns the environment logger.
func (e *Environment) Logger() *slog.Logger {
	return e.logger
}

// TemplateSet exposes the underlying pongo2 set.
func (e *Environment) TemplateSet() *pongo2.TemplateSet {
	return e.set
}
