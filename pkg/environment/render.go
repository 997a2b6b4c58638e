package environment

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/flosch/pongo2/v6"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-pongoview/pkg/profiler"
)

// Load compiles name through the loader. Compiled templates are cached when
// caching is enabled.
func (e *Environment) Load(name string) (*pongo2.Template, error) {
	if e.cfg.CacheEnabled() {
		return e.set.FromCache(name)
	}
	return e.set.FromFile(name)
}

// Render loads name and executes it with data. kind labels the render for
// tracing and profiling (see the profiler.Kind constants). Engine errors are
// returned unchanged.
func (e *Environment) Render(ctx context.Context, kind, name string, data map[string]any) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := e.tracer.Start(ctx, "pongoview.render", trace.WithAttributes(
		attribute.String("pongoview.template", name),
		attribute.String("pongoview.kind", kind),
	))
	defer span.End()

	if e.profiler != nil {
		var entry *profiler.Profile
		ctx, entry = e.profiler.Enter(ctx, kind, name, name)
		defer e.profiler.Leave(entry)
	}

	tpl, err := e.Load(name)
	if err != nil {
		e.fail(span, "load", name, err)
		return "", err
	}
	return e.execute(ctx, span, tpl, name, data)
}

// RenderString compiles source and executes it with data.
func (e *Environment) RenderString(ctx context.Context, source string, data map[string]any) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := e.tracer.Start(ctx, "pongoview.render_string")
	defer span.End()

	tpl, err := e.set.FromString(source)
	if err != nil {
		e.fail(span, "parse", "<string>", err)
		return "", err
	}
	return e.execute(ctx, span, tpl, "<string>", data)
}

func (e *Environment) execute(ctx context.Context, span trace.Span, tpl *pongo2.Template, name string, data map[string]any) (string, error) {
	renderCtx := make(pongo2.Context, len(data)+1)
	for key, value := range data {
		renderCtx[key] = value
	}
	renderCtx[ContextKey] = ctx

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(renderCtx, &buf); err != nil {
		e.fail(span, "execute", name, err)
		return "", err
	}
	return buf.String(), nil
}

func (e *Environment) fail(span trace.Span, stage, name string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	e.logger.Debug("render failed",
		slog.String("stage", stage),
		slog.String("template", name),
		slog.Any("error", err),
	)
}

// ClearCache drops compiled templates. Without names the whole cache is
// cleared.
func (e *Environment) ClearCache(names ...string) {
	e.set.CleanCache(names...)
	e.logger.Debug("template cache cleared", slog.Int("templates", len(names)))
}
