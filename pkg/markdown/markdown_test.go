package markdown_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-pongoview/pkg/markdown"
)

func TestGoMarkdown_TransformsAndSanitises(t *testing.T) {
	engine := markdown.NewGoMarkdown()

	out, err := engine.Transform("# Title\n\nSome *emphasis*.\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Title</h1>") {
		t.Fatalf("expected heading in output, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Fatalf("expected emphasis in output, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be sanitised, got %q", out)
	}
}

func TestGoMarkdown_EmptyInput(t *testing.T) {
	out, err := markdown.NewGoMarkdown().Transform("   ")
	if err != nil || out != "" {
		t.Fatalf("expected empty output, got %q (err=%v)", out, err)
	}
}

func TestRuntimeLoader_Load(t *testing.T) {
	engine := markdown.EngineFunc(func(text string) (string, error) { return "<p>" + text + "</p>", nil })
	loader := markdown.NewRuntimeLoader(engine)

	runtime, ok := loader.Load(markdown.RuntimeName)
	if !ok {
		t.Fatalf("expected runtime to be provided")
	}
	got, err := runtime.(markdown.Engine).Transform("hi")
	if err != nil || got != "<p>hi</p>" {
		t.Fatalf("unexpected runtime output %q (err=%v)", got, err)
	}

	if _, ok := loader.Load("other"); ok {
		t.Fatalf("expected unknown runtime to be missing")
	}
	if _, ok := markdown.NewRuntimeLoader(nil).Load(markdown.RuntimeName); ok {
		t.Fatalf("expected nil engine loader to provide nothing")
	}
}

func TestStripTags(t *testing.T) {
	if got := markdown.StripTags("<p>Hello <b>world</b></p>"); got != "Hello world" {
		t.Fatalf("unexpected strip result %q", got)
	}
}
