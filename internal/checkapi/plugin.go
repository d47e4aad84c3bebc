package checkapi

import (
	"fmt"
	"plugin"
)

// Plugin registers checks and profiles into a registry.
type Plugin interface {
	Register(r *Registry) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(r *Registry) error

func (f PluginFunc) Register(r *Registry) error { return f(r) }

// PluginSymbol is the name a plugin shared object must export. It may be a
// Plugin value or a func(*Registry) error.
const PluginSymbol = "FontspectorPlugin"

// RegisterPlugins runs each plugin in order and stops at the first failure.
func (r *Registry) RegisterPlugins(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// LoadPlugin opens a Go plugin built with -buildmode=plugin and runs its
// registration entry point.
func (r *Registry) LoadPlugin(path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", path, err)
	}
	var entry Plugin
	switch v := sym.(type) {
	case *Plugin:
		entry = *v
	case Plugin:
		entry = v
	case func(*Registry) error:
		entry = PluginFunc(v)
	case *func(*Registry) error:
		entry = PluginFunc(*v)
	default:
		return fmt.Errorf("plugin %s: symbol %s has unexpected type %T", path, PluginSymbol, sym)
	}
	if err := entry.Register(r); err != nil {
		return fmt.Errorf("plugin %s: register: %w", path, err)
	}
	return nil
}
