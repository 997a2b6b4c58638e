package paths

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTemplateNotFound is matched by every *MissingTemplateError.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrLayoutNotFound is matched by every *MissingLayoutError.
	ErrLayoutNotFound = errors.New("layout not found")
	// ErrElementNotFound is returned when an element has to be rendered but no
	// file exists for it. Resolution alone reports a missing element with a
	// boolean instead.
	ErrElementNotFound = errors.New("element not found")
)

// MissingTemplateError reports the logical template name that was requested
// together with every file that was tried.
type MissingTemplateError struct {
	Name  string
	Paths []string
}

func (e *MissingTemplateError) Error() string {
	return missingMessage("template", e.Name, e.Paths)
}

// Is reports whether target is ErrTemplateNotFound.
func (e *MissingTemplateError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// MissingLayoutError reports a layout that could not be located.
type MissingLayoutError struct {
	Name  string
	Paths []string
}

func (e *MissingLayoutError) Error() string {
	return missingMessage("layout", e.Name, e.Paths)
}

// Is reports whether target is ErrLayoutNotFound.
func (e *MissingLayoutError) Is(target error) bool {
	return target == ErrLayoutNotFound
}

// MissingElementError is returned by renderers that must produce element
// output and cannot find the file.
type MissingElementError struct {
	Name  string
	Paths []string
}

func (e *MissingElementError) Error() string {
	return missingMessage("element", e.Name, e.Paths)
}

// Is reports whether target is ErrElementNotFound.
func (e *MissingElementError) Is(target error) bool {
	return target == ErrElementNotFound
}

func missingMessage(kind, name string, searched []string) string {
	if len(searched) == 0 {
		return fmt.Sprintf("paths: %s %q not found", kind, name)
	}
	return fmt.Sprintf("paths: %s %q not found (searched: %s)", kind, name, strings.Join(searched, ", "))
}
