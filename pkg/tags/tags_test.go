package tags_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/loader"
	"github.com/goliatone/go-pongoview/pkg/paths"
	"github.com/goliatone/go-pongoview/pkg/tags"
)

func render(t *testing.T, source string, data map[string]any) (string, error) {
	t.Helper()
	if err := tags.Register(); err != nil {
		t.Fatalf("register tags: %v", err)
	}
	l, err := loader.New(paths.Conventions{FS: fstest.MapFS{}}, []string{".pongo2"})
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	env, err := environment.New(environment.WithLoader(l))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	return env.RenderString(context.Background(), source, data)
}

func TestRegister_Idempotent(t *testing.T) {
	if err := tags.Register(); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := tags.Register(); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestElementTag_RendersThroughView(t *testing.T) {
	view := &stubView{}
	out, err := render(t, `{% set title = "Hi" %}[{% element "Element/card" with size=2 %}]`, map[string]any{
		environment.ViewKey: view,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[<card size=2 title=Hi>]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestElementTag_OmitsEngineMetadata(t *testing.T) {
	view := &stubView{}
	out, err := render(t, `{% element "Element/card" %}`, map[string]any{
		environment.ViewKey: view,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "pongo2") {
		t.Fatalf("element data leaked engine metadata: %q", out)
	}
	if out != "<card>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestElementTag_OnlyPassesExplicitData(t *testing.T) {
	view := &stubView{}
	out, err := render(t, `{% set title = "Hi" %}{% element name with size=1 only %}`, map[string]any{
		environment.ViewKey: view,
		"name":              "Element/card",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<card size=1>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestElementTag_MissingViewFails(t *testing.T) {
	_, err := render(t, `{% element "Element/card" %}`, nil)
	if err == nil || !strings.Contains(err.Error(), "no view bound") {
		t.Fatalf("expected missing view error, got %v", err)
	}
}

func TestElementTag_PropagatesViewErrors(t *testing.T) {
	view := &stubView{elementErr: &paths.MissingElementError{Name: "Element/nope"}}
	_, err := render(t, `{% element "Element/nope" %}`, map[string]any{environment.ViewKey: view})
	if err == nil || !strings.Contains(err.Error(), `element "Element/nope" not found`) {
		t.Fatalf("expected element not found error, got %v", err)
	}
}

func TestCellTag_WritesAndAssigns(t *testing.T) {
	view := &stubView{}
	out, err := render(t, `{% cell "Inbox::expanded" with count=3 %}|{% cell inbox = "Inbox" %}<{{ inbox }}>`, map[string]any{
		environment.ViewKey: view,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<b>Inbox::expanded count=3</b>|<<b>Inbox</b>>" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := strings.Join(view.cells, ","); diff != "Inbox::expanded,Inbox" {
		t.Fatalf("unexpected cell calls %q", diff)
	}
}

func TestCellTag_MalformedArguments(t *testing.T) {
	_, err := render(t, `{% cell "Inbox" extra %}`, map[string]any{environment.ViewKey: &stubView{}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

type stubView struct {
	elementErr error
	cells      []string
}

func (s *stubView) Element(_ context.Context, name string, data, _ map[string]any) (string, error) {
	if s.elementErr != nil {
		return "", s.elementErr
	}
	return fmt.Sprintf("<%s%s>", strings.ToLower(strings.TrimPrefix(name, "Element/")), formatData(data)), nil
}

func (s *stubView) Cell(_ context.Context, name string, data, _ map[string]any) (string, error) {
	s.cells = append(s.cells, name)
	return fmt.Sprintf("<b>%s%s</b>", name, formatData(data)), nil
}

func (s *stubView) Fetch(string, string) string { return "" }

func (s *stubView) Helper(string) (any, bool) { return nil, false }

var _ environment.View = (*stubView)(nil)

func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, data[key])
	}
	return b.String()
}

