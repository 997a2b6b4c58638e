// Package pongoview renders a web framework's views with pongo2. The view
// package holds the factory and view adapter; this package re-exports the
// pieces most callers need.
package pongoview

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-pongoview/internal/logging"
	"github.com/goliatone/go-pongoview/pkg/config"
	"github.com/goliatone/go-pongoview/pkg/view"
)

// Factory builds the shared environment and hands out views.
type Factory = view.Factory

// View is a single view instance.
type View = view.View

// Config is the configuration bag.
type Config = config.Config

// FactoryOption configures a Factory.
type FactoryOption = view.FactoryOption

// ViewOption configures a View.
type ViewOption = view.Option

// New returns a factory. WithFS is required before the first view is created.
func New(opts ...FactoryOption) *Factory {
	return view.NewFactory(opts...)
}

// LoggingContext returns a copy of ctx carrying logger. A factory without an
// explicit logger picks it up when the environment is first built.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.WithLogger(ctx, logger)
}

// DefaultConfig returns the default configuration bag.
func DefaultConfig() Config {
	return config.Defaults()
}
