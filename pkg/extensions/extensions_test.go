package extensions_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/extensions"
	"github.com/goliatone/go-pongoview/pkg/framework"
	"github.com/goliatone/go-pongoview/pkg/loader"
	"github.com/goliatone/go-pongoview/pkg/markdown"
	"github.com/goliatone/go-pongoview/pkg/paths"
)

var fixedNow = time.Date(2026, time.March, 3, 14, 5, 0, 0, time.UTC)

func newEnv(t *testing.T, deps extensions.Deps, opts ...environment.Option) *environment.Environment {
	t.Helper()
	l, err := loader.New(paths.Conventions{FS: fstest.MapFS{}}, []string{".pongo2"})
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	base := []environment.Option{
		environment.WithLoader(l),
		environment.WithExtensions(extensions.Defaults(deps)...),
	}
	env, err := environment.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	return env
}

func render(t *testing.T, env *environment.Environment, source string, data map[string]any) string {
	t.Helper()
	out, err := env.RenderString(context.Background(), source, data)
	if err != nil {
		t.Fatalf("render %q: %v", source, err)
	}
	return out
}

func TestDefaults_RegistersEveryProvider(t *testing.T) {
	env := newEnv(t, extensions.Deps{})
	for _, name := range []string{"basic", "arrays", "configure", "i18n", "inflector", "number", "strings", "time", "utils", "view", "markdown"} {
		if !env.HasExtension(name) {
			t.Fatalf("expected extension %q to be registered", name)
		}
	}
}

func TestFunctionsAndFilters(t *testing.T) {
	settings := framework.NewSettings(map[string]any{
		"App": map[string]any{"name": "Inbox"},
	})
	env := newEnv(t, extensions.Deps{Settings: settings, Now: func() time.Time { return fixedNow }})

	data := map[string]any{
		"items": []string{"a", "b", "c"},
		"user":  map[string]any{"name": "Ana", "roles": []string{"admin"}},
		"tpl":   "Hi {name}, {missing}",
		"when":  fixedNow,
	}

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"low", `{{ "ABC"|low }}`, "abc"},
		{"up", `{{ "abc"|up }}`, "ABC"},
		{"h", `{{ "<b>"|h }}`, "&lt;b&gt;"},
		{"count", `{{ items|count }}`, "3"},
		{"in array", `{% if in_array("b", items) %}yes{% endif %}`, "yes"},
		{"explode", `{{ explode(",", "x,y,z")|join:"|" }}`, "x|y|z"},
		{"hash get", `{{ hash_get(user, "roles.0") }}`, "admin"},
		{"hash get fallback", `{{ hash_get(user, "missing", "none") }}`, "none"},
		{"config", `{{ config("App.name") }}`, "Inbox"},
		{"config check", `{% if not config_check("App.port") %}unset{% endif %}`, "unset"},
		{"translate without catalog", `{{ __("Hello {0}", user.name) }}`, "Hello Ana"},
		{"plural without catalog", `{{ __n("{0} item", "{0} items", 2, 2) }}`, "2 items"},
		{"pluralize", `{{ "person"|pluralize }}`, "people"},
		{"singularize", `{{ "boxes"|singularize }}`, "box"},
		{"camelize", `{{ "apple_pie"|camelize }}`, "ApplePie"},
		{"slug", `{{ "Hello World"|slug }}`, "hello-world"},
		{"number format", `{{ 1234.5|number_format:2 }}`, "1,234.50"},
		{"readable size", `{{ 2048|to_readable_size }}`, "2.0 kB"},
		{"ordinal", `{{ 21|ordinal }}`, "21st"},
		{"substr", `{{ "hello world"|substr:"0,5" }}`, "hello"},
		{"insert", `{{ insert(tpl, user) }}`, "Hi Ana, {missing}"},
		{"to list", `{{ to_list(items) }}`, "a, b and c"},
		{"strip links", `{{ "<a href=\"/x\">go</a>!"|strip_links }}`, "go!"},
		{"base64", `{{ "hi"|base64_encode }}`, "aGk="},
		{"md5", `{{ "hi"|md5 }}`, "49f68a5c8493ec2c0bf489821c21fc3b"},
		{"json", `{{ items|json_encode }}`, `["a","b","c"]`},
		{"to unix", `{{ now()|to_unix }}`, "1772546700"},
		{"nice", `{{ when|nice }}`, "Tuesday, March 3rd 2026, 14:05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := render(t, env, tc.source, data); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18n_UsesTranslator(t *testing.T) {
	catalog := framework.NewCatalog("fr")
	catalog.Add("fr", framework.DefaultDomain, map[string]string{"Hello {0}": "Bonjour {0}"})
	env := newEnv(t, extensions.Deps{Translator: catalog})

	out := render(t, env, `{{ __("Hello {0}", "Ana") }} {{ current_locale() }} {{ current_locale(user) }}`, map[string]any{
		"user": map[string]any{"locale": "de"},
	})
	if out != "Bonjour Ana fr de" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMarkdown_WithoutRuntimeFails(t *testing.T) {
	env := newEnv(t, extensions.Deps{})

	_, err := env.RenderString(context.Background(), `{{ markdown_to_html("# Title") }}`, nil)
	if err == nil {
		t.Fatalf("expected error without a markdown runtime")
	}
	if !strings.Contains(err.Error(), "runtime not available") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMarkdown_WithRuntimeRendersSafeHTML(t *testing.T) {
	engine := markdown.EngineFunc(func(text string) (string, error) {
		return "<p>" + strings.ToUpper(text) + "</p>", nil
	})
	env := newEnv(t, extensions.Deps{}, environment.WithRuntimeLoader(markdown.NewRuntimeLoader(engine)))

	out := render(t, env, `{{ markdown_to_html(body) }}`, map[string]any{"body": "hi"})
	if out != "<p>HI</p>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMarkdown_EngineErrorPropagates(t *testing.T) {
	engine := markdown.EngineFunc(func(string) (string, error) {
		return "", errors.New("boom")
	})
	env := newEnv(t, extensions.Deps{}, environment.WithRuntimeLoader(markdown.NewRuntimeLoader(engine)))

	_, err := env.RenderString(context.Background(), `{{ markdown_to_html("x") }}`, nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestViewFunctions_RequireView(t *testing.T) {
	env := newEnv(t, extensions.Deps{})

	for _, source := range []string{`{{ element("card") }}`, `{{ cell("Inbox") }}`, `{{ fetch("sidebar") }}`} {
		if _, err := env.RenderString(context.Background(), source, nil); err == nil {
			t.Fatalf("expected error for %s without a view", source)
		}
	}
}

func TestViewFunctions_CallBoundView(t *testing.T) {
	env := newEnv(t, extensions.Deps{})
	view := &stubView{blocks: map[string]string{"sidebar": "<nav/>"}}

	out := render(t, env, `{{ element("card", data) }}|{{ cell("Inbox::expanded") }}|{{ fetch("sidebar") }}|{{ fetch("none", "-") }}`, map[string]any{
		environment.ViewKey: view,
		"data":              map[string]any{"title": "T"},
	})
	if out != "<card T>|<cell Inbox::expanded>|<nav/>|-" {
		t.Fatalf("unexpected output %q", out)
	}
}

type stubView struct {
	blocks map[string]string
}

func (s *stubView) Element(_ context.Context, name string, data, _ map[string]any) (string, error) {
	return "<" + name + " " + strings.TrimSpace(toString(data["title"])) + ">", nil
}

func (s *stubView) Cell(_ context.Context, name string, _, _ map[string]any) (string, error) {
	return "<cell " + name + ">", nil
}

func (s *stubView) Fetch(name, fallback string) string {
	if block, ok := s.blocks[name]; ok {
		return block
	}
	return fallback
}

func (s *stubView) Helper(string) (any, bool) { return nil, false }

func toString(v any) string {
	s, _ := v.(string)
	return s
}
