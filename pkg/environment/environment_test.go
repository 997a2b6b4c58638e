package environment_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/loader"
	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/profiler"
)

func newEnv(t *testing.T, files fstest.MapFS, opts ...environment.Option) *environment.Environment {
	t.Helper()
	l, err := loader.New(paths.Conventions{FS: files}, []string{".pongo2", ".tpl"})
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	env, err := environment.New(append([]environment.Option{environment.WithLoader(l)}, opts...)...)
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	return env
}

func TestNew_RequiresLoader(t *testing.T) {
	if _, err := environment.New(); err == nil {
		t.Fatalf("expected error without loader")
	}
}

func TestEnvironment_RenderWithExtension(t *testing.T) {
	files := fstest.MapFS{
		"templates/hello.pongo2": {Data: []byte(`{{ greet(name) }} {{ name|envtest_shout }} {{ "  x "|trim }}`)},
	}
	env := newEnv(t, files, environment.WithExtensions(stubExtension{}))

	out, err := env.Render(context.Background(), profiler.KindTemplate, "hello", map[string]any{"name": "ana"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "hello ana ANA! x" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := cmp.Diff([]string{"stub"}, env.Extensions()); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironment_AddExtensionRejectsDuplicates(t *testing.T) {
	env := newEnv(t, fstest.MapFS{}, environment.WithExtensions(stubExtension{}))
	if err := env.AddExtension(stubExtension{}); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
}

func TestEnvironment_AddExtensionRejectsInvalidNames(t *testing.T) {
	env := newEnv(t, fstest.MapFS{})
	err := env.AddExtension(funcsExtension{name: "bad", funcs: map[string]any{"not-valid": func() string { return "" }}})
	if err == nil {
		t.Fatalf("expected invalid function name error")
	}
}

func TestEnvironment_RuntimeNotAvailable(t *testing.T) {
	env := newEnv(t, fstest.MapFS{})

	if _, err := env.Runtime("markdown"); !errors.Is(err, environment.ErrRuntimeNotAvailable) {
		t.Fatalf("expected runtime not available, got %v", err)
	}

	env.AddRuntimeLoader(environment.RuntimeLoaderFunc(func(name string) (any, bool) {
		return "engine", name == "markdown"
	}))
	runtime, err := env.Runtime("markdown")
	if err != nil || runtime != "engine" {
		t.Fatalf("expected runtime, got %v (err=%v)", runtime, err)
	}
}

func TestEnvironment_CacheFollowsConfig(t *testing.T) {
	files := fstest.MapFS{"templates/page.pongo2": {Data: []byte("v1")}}
	env := newEnv(t, files)

	render := func() string {
		t.Helper()
		out, err := env.Render(context.Background(), profiler.KindTemplate, "templates/page.pongo2", nil)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return out
	}

	if got := render(); got != "v1" {
		t.Fatalf("unexpected first render %q", got)
	}
	files["templates/page.pongo2"].Data = []byte("v2")
	if got := render(); got != "v1" {
		t.Fatalf("expected cached output, got %q", got)
	}
	env.ClearCache()
	if got := render(); got != "v2" {
		t.Fatalf("expected fresh output after clear, got %q", got)
	}

	debugFiles := fstest.MapFS{"templates/page.pongo2": {Data: []byte("v1")}}
	debugCfg := config.Merge(config.Defaults(), config.Config{Environment: config.Environment{Debug: true}})
	debugEnv := newEnv(t, debugFiles, environment.WithConfig(debugCfg))
	if _, err := debugEnv.Render(context.Background(), profiler.KindTemplate, "templates/page.pongo2", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	debugFiles["templates/page.pongo2"].Data = []byte("v2")
	out, err := debugEnv.Render(context.Background(), profiler.KindTemplate, "templates/page.pongo2", nil)
	if err != nil || out != "v2" {
		t.Fatalf("expected debug mode to recompile, got %q (err=%v)", out, err)
	}
}

func TestEnvironment_ProfilerAttachedOnlyInDebug(t *testing.T) {
	files := fstest.MapFS{"templates/page.pongo2": {Data: []byte("ok")}}

	p := profiler.New()
	env := newEnv(t, files, environment.WithProfiler(p))
	if _, ok := env.Profiler(); ok {
		t.Fatalf("expected profiler to stay detached outside debug mode")
	}

	debugCfg := config.Merge(config.Defaults(), config.Config{Environment: config.Environment{Debug: true}})
	env = newEnv(t, files, environment.WithProfiler(p), environment.WithConfig(debugCfg))
	if _, ok := env.Profiler(); !ok {
		t.Fatalf("expected profiler attached in debug mode")
	}
	if _, err := env.Render(context.Background(), profiler.KindTemplate, "page", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	root := p.Root()
	if len(root.Children) != 1 || root.Children[0].Name != "page" {
		t.Fatalf("expected one profiled render, got %+v", root.Children)
	}
}

func TestEnvironment_EngineErrorsPropagate(t *testing.T) {
	files := fstest.MapFS{"templates/broken.pongo2": {Data: []byte("{% if %}")}}
	env := newEnv(t, files)

	_, err := env.Render(context.Background(), profiler.KindTemplate, "broken", nil)
	var engineErr *pongo2.Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *pongo2.Error, got %T: %v", err, err)
	}
}

func TestEnvironment_RenderStringSeesGoContext(t *testing.T) {
	env := newEnv(t, fstest.MapFS{}, environment.WithExtensions(funcsExtension{
		name: "ctx",
		funcs: map[string]any{
			"request_id": func(ectx *pongo2.ExecutionContext) string {
				id, _ := environment.GoContext(ectx).Value(requestKey{}).(string)
				return id
			},
		},
	}))

	ctx := context.WithValue(context.Background(), requestKey{}, "req-42")
	out, err := env.RenderString(ctx, "{{ request_id() }}", nil)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "req-42" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEnvironment_SetGlobal(t *testing.T) {
	env := newEnv(t, fstest.MapFS{}, environment.WithGlobals(map[string]any{"site": "Bakery"}))
	if err := env.SetGlobal("bad-name", 1); err == nil {
		t.Fatalf("expected invalid global name error")
	}
	out, err := env.RenderString(context.Background(), "{{ site }}", nil)
	if err != nil || out != "Bakery" {
		t.Fatalf("unexpected output %q (err=%v)", out, err)
	}
}

type requestKey struct{}

type stubExtension struct{}

func (stubExtension) Name() string { return "stub" }

func (stubExtension) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"greet": func(name any) string { return "hello " + strings.TrimSpace(pongo2.AsValue(name).String()) },
	}
}

func (stubExtension) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"envtest_shout": func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.ToUpper(in.String()) + "!"), nil
		},
	}
}

type funcsExtension struct {
	name  string
	funcs map[string]any
}

func (f funcsExtension) Name() string { return f.name }

func (f funcsExtension) Functions(*environment.Environment) map[string]any { return f.funcs }

func (funcsExtension) Filters() map[string]pongo2.FilterFunction { return nil }
