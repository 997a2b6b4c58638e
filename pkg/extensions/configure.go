package extensions

import (
	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-pongoview/pkg/environment"
	"github.com/goliatone/go-pongoview/pkg/framework"
)

// Configure exposes application settings reads.
type Configure struct {
	settings framework.Configuration
}

// NewConfigure wraps settings. A nil settings value reads as empty.
func NewConfigure(settings framework.Configuration) Configure {
	return Configure{settings: settings}
}

// Name implements environment.Extension.
func (Configure) Name() string { return "configure" }

// Functions implements environment.Extension.
func (c Configure) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"config": func(key any) any {
			if c.settings == nil {
				return nil
			}
			return c.settings.Read(pongo2.AsValue(key).String())
		},
		"config_check": func(key any) bool {
			if c.settings == nil {
				return false
			}
			return c.settings.Check(pongo2.AsValue(key).String())
		},
	}
}

// Filters implements environment.Extension.
func (Configure) Filters() map[string]pongo2.FilterFunction { return nil }
