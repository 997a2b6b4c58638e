package environment

import (
	"errors"
	"fmt"
)

// ErrRuntimeNotAvailable is returned when no runtime loader provides a
// requested runtime.
var ErrRuntimeNotAvailable = errors.New("runtime not available")

// RuntimeLoader lazily provides named runtime capabilities such as the
// markdown engine.
type RuntimeLoader interface {
	Load(name string) (any, bool)
}

// RuntimeLoaderFunc adapts a function to RuntimeLoader.
type RuntimeLoaderFunc func(name string) (any, bool)

// Load calls f.
func (f RuntimeLoaderFunc) Load(name string) (any, bool) {
	return f(name)
}

// AddRuntimeLoader appends loader to the lookup chain.
func (e *Environment) AddRuntimeLoader(loader RuntimeLoader) {
	if loader == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtimes = append(e.runtimes, loader)
}

// Runtime asks each loader in order for name.
func (e *Environment) Runtime(name string) (any, error) {
	e.mu.RLock()
	loaders := e.runtimes
	e.mu.RUnlock()

	for _, loader := range loaders {
		if runtime, ok := loader.Load(name); ok && runtime != nil {
			return runtime, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRuntimeNotAvailable, name)
}
