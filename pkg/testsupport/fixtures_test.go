package testsupport

import (
	"io"
	"io/fs"
	"testing"
)

func TestTemplatesFS(t *testing.T) {
	fsys := TemplatesFS(map[string]string{
		"/templates/Posts/index.pongo2": "index",
	})
	data, err := fs.ReadFile(fsys, "templates/Posts/index.pongo2")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "index" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestCaptureTemplateOutput(t *testing.T) {
	out, written := CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		_, err := io.WriteString(w, "Hello, Ana!\n")
		return "Hello, Ana!\n", err
	})
	if out != written {
		t.Fatalf("returned %q but wrote %q", out, written)
	}
	AssertGolden(t, "testdata/greeting.golden", written)
}
