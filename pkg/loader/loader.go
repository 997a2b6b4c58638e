// Package loader resolves template names for pongo2 using the framework path
// conventions.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/paths"
)

// Loader implements pongo2.TemplateLoader on top of an fs.FS.
type Loader struct {
	conv       paths.Conventions
	extensions []string
}

var _ pongo2.TemplateLoader = (*Loader)(nil)

// New creates a loader. extensions is the ordered candidate suffix list used
// for logical names without a suffix.
func New(conv paths.Conventions, extensions []string) (*Loader, error) {
	if conv.FS == nil {
		return nil, errors.New("loader: filesystem is required")
	}
	if len(extensions) == 0 {
		return nil, errors.New("loader: at least one extension is required")
	}
	return &Loader{conv: conv, extensions: append([]string(nil), extensions...)}, nil
}

// Conventions returns the path rules the loader resolves with.
func (l *Loader) Conventions() paths.Conventions {
	return l.conv
}

// Abs resolves name as seen from the template base. Existing file paths pass
// through, then paths relative to base are tried, then logical names. When
// nothing matches the cleaned name is returned and Get reports the miss.
func (l *Loader) Abs(base, name string) string {
	cleaned, ok := paths.Normalize(name)
	if !ok {
		return name
	}
	if l.conv.Exists(cleaned) {
		return cleaned
	}
	if base != "" && !strings.HasPrefix(strings.TrimSpace(name), "/") {
		relative := path.Join(path.Dir(base), cleaned)
		if l.conv.Exists(relative) {
			return relative
		}
	}
	if resolved, err := l.Resolve(cleaned); err == nil {
		return resolved
	}
	return cleaned
}

// Resolve maps a logical name ("Posts/index", "Blog.Element/card.pongo2") to
// a file, trying each candidate extension in order.
func (l *Loader) Resolve(name string) (string, error) {
	cleaned, ok := paths.Normalize(name)
	if !ok {
		return "", &paths.MissingTemplateError{Name: name}
	}
	plugin, logical := l.conv.SplitPlugin(cleaned, "")

	candidates := l.extensions
	for _, ext := range l.extensions {
		if strings.HasSuffix(logical, ext) {
			logical = strings.TrimSuffix(logical, ext)
			candidates = []string{ext}
			break
		}
	}

	var searched []string
	for _, ext := range candidates {
		file, tried, found := l.conv.Find(logical, ext, plugin)
		searched = append(searched, tried...)
		if found {
			return file, nil
		}
	}
	return "", &paths.MissingTemplateError{Name: name, Paths: searched}
}

// Get opens an already resolved path.
func (l *Loader) Get(name string) (io.Reader, error) {
	data, err := fs.ReadFile(l.conv.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loader: %q: %w", name, paths.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("loader: read %q: %w", name, err)
	}
	return bytes.NewReader(data), nil
}
