package pongoview

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in layout and elements so callers can
// layer them under their own templates.
func EmbeddedTemplates() fs.FS {
	return embeddedTemplates
}
