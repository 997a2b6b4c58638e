package framework

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultCellAction is invoked when a cell name carries no ::action suffix.
const DefaultCellAction = "display"

// ErrCellNotFound is returned for unregistered cells.
var ErrCellNotFound = errors.New("framework: cell not found")

// CellRequest is the input to a cell invocation.
type CellRequest struct {
	Name    string
	Action  string
	Data    map[string]any
	Options map[string]any
}

// Cell is a request-handling component rendered inside a template. It returns
// the view variables and the template to render them with. An empty template
// defaults to Cell/<Name>/<action>.
type Cell func(ctx context.Context, req CellRequest) (vars map[string]any, template string, err error)

// CellRenderer dispatches a cell invocation and returns its output. The view
// package implements it on top of a CellRegistry.
type CellRenderer interface {
	Cell(ctx context.Context, name string, data, opts map[string]any) (string, error)
}

// CellRegistry stores cells by name.
type CellRegistry struct {
	mu    sync.RWMutex
	cells map[string]Cell
}

// NewCellRegistry creates an empty registry.
func NewCellRegistry() *CellRegistry {
	return &CellRegistry{cells: make(map[string]Cell)}
}

// Register adds cell under name. Duplicate names return an error.
func (r *CellRegistry) Register(name string, cell Cell) error {
	name = strings.TrimSpace(name)
	if name == "" || cell == nil {
		return fmt.Errorf("framework: cell name and function required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cells[name]; exists {
		return fmt.Errorf("framework: cell %q already registered", name)
	}
	r.cells[name] = cell
	return nil
}

// MustRegister panics on registration failure.
func (r *CellRegistry) MustRegister(name string, cell Cell) {
	if err := r.Register(name, cell); err != nil {
		panic(err)
	}
}

// Lookup resolves "Name" or "Name::action" to a cell and action.
func (r *CellRegistry) Lookup(ref string) (Cell, string, string, error) {
	name, action := SplitCell(ref)

	r.mu.RLock()
	defer r.mu.RUnlock()

	cell, ok := r.cells[name]
	if !ok {
		return nil, name, action, fmt.Errorf("%w: %q", ErrCellNotFound, name)
	}
	return cell, name, action, nil
}

// List returns registered cell names in sorted order.
func (r *CellRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cells))
	for name := range r.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitCell splits "Name::action". A missing action yields DefaultCellAction.
func SplitCell(ref string) (string, string) {
	ref = strings.TrimSpace(ref)
	name, action, found := strings.Cut(ref, "::")
	if !found || strings.TrimSpace(action) == "" {
		return name, DefaultCellAction
	}
	return name, strings.TrimSpace(action)
}
