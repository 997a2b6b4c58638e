package framework_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pongoview/pkg/framework"
)

func TestCatalog_TranslateFromFS(t *testing.T) {
	files := fstest.MapFS{
		"locales/fr/default.yaml": {Data: []byte(`
"Hello {0}": "Bonjour {0}"
"{0} apple":
  one: "{0} pomme"
  other: "{0} pommes"
"menu::Open": "Ouvrir le menu"
`)},
		"locales/fr/admin.yaml": {Data: []byte(`"Save": "Enregistrer"`)},
	}
	catalog := framework.NewCatalog("fr")
	if err := catalog.LoadFS(files, "locales"); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	cases := []struct {
		msg  framework.Message
		want string
	}{
		{framework.Message{Singular: "Hello {0}", Args: []any{"Ana"}}, "Bonjour Ana"},
		{framework.Message{Singular: "{0} apple", Plural: "{0} apples", Count: 1, Args: []any{1}}, "1 pomme"},
		{framework.Message{Singular: "{0} apple", Plural: "{0} apples", Count: 3, Args: []any{3}}, "3 pommes"},
		{framework.Message{Domain: "admin", Singular: "Save"}, "Enregistrer"},
		{framework.Message{Context: "menu", Singular: "Open"}, "Ouvrir le menu"},
	}
	for _, tc := range cases {
		got, err := catalog.Translate(tc.msg)
		if err != nil {
			t.Fatalf("translate %q: %v", tc.msg.Singular, err)
		}
		if got != tc.want {
			t.Fatalf("translate %q = %q, want %q", tc.msg.Singular, got, tc.want)
		}
	}
}

func TestCatalog_MissingFallsBackToMessageID(t *testing.T) {
	catalog := framework.NewCatalog("en")

	got, err := catalog.Translate(framework.Message{Singular: "{0} file", Plural: "{0} files", Count: 2, Args: []any{2}})
	if !errors.Is(err, framework.ErrMissingTranslation) {
		t.Fatalf("expected missing translation error, got %v", err)
	}
	if got != "2 files" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestCatalog_Match(t *testing.T) {
	catalog := framework.NewCatalog("en")
	catalog.Add("fr", framework.DefaultDomain, map[string]string{"Yes": "Oui"})
	catalog.Add("de", framework.DefaultDomain, map[string]string{"Yes": "Ja"})

	if got := catalog.Match("fr-CA,fr;q=0.9,en;q=0.5"); got != "fr" {
		t.Fatalf("expected fr, got %q", got)
	}
	if got := catalog.Match("ja"); got != "en" {
		t.Fatalf("expected default locale for unsupported language, got %q", got)
	}
	if diff := cmp.Diff([]string{"de", "en", "fr"}, catalog.Locales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatMessage_NamedPlaceholders(t *testing.T) {
	got := framework.FormatMessage("Hi {name}, you have {count} items {unknown}", map[string]any{"name": "Ana", "count": 2})
	if got != "Hi Ana, you have 2 items {unknown}" {
		t.Fatalf("unexpected format %q", got)
	}
}
