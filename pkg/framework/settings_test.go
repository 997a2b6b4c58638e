package framework_test

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pongoview/pkg/framework"
)

func TestSettings_DottedReads(t *testing.T) {
	settings := framework.NewSettings(map[string]any{
		"App": map[string]any{
			"name":  "Bakery",
			"debug": false,
		},
	})

	if got := settings.Read("App.name"); got != "Bakery" {
		t.Fatalf("unexpected value %v", got)
	}
	if !settings.Check("App.debug") {
		t.Fatalf("expected App.debug to be set")
	}
	if settings.Check("App.missing") || settings.Read("App.name.deeper") != nil {
		t.Fatalf("expected missing keys to read as unset")
	}

	settings.Write("Cache.default.engine", "memory")
	if got := settings.Read("Cache.default.engine"); got != "memory" {
		t.Fatalf("unexpected written value %v", got)
	}
}

func TestLoadSettings(t *testing.T) {
	files := fstest.MapFS{
		"app.yaml": {Data: []byte("App:\n  name: Bakery\n  locales: [en, fr]\n")},
	}
	settings, err := framework.LoadSettings(files, "app.yaml")
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got := settings.Read("App.name"); got != "Bakery" {
		t.Fatalf("unexpected value %v", got)
	}
	if _, err := framework.LoadSettings(files, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing settings file")
	}
}
