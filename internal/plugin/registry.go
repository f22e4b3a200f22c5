package plugin

import (
	"fmt"
	"log/slog"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
)

// Registry holds the ordered set of registered plugins and, per action,
// the lookup from plugin name to its bound handler.
//
// Registration order is load-bearing: resolution in the core scans plugins
// in the order they were registered, so built-ins registered first win
// ties against later external plugins.
type Registry struct {
	host    Host
	plugins []*Plugin
	byName  map[string]*Plugin
	actions map[ActionName]map[string]*BoundAction
}

// NewRegistry creates an empty registry whose factories will be bound to
// the given host.
func NewRegistry(host Host) *Registry {
	actions := make(map[ActionName]map[string]*BoundAction, len(ActionNames))
	for _, name := range ActionNames {
		actions[name] = make(map[string]*BoundAction)
	}
	return &Registry{
		host:    host,
		byName:  make(map[string]*Plugin),
		actions: actions,
	}
}

// Register invokes the factory and adds the resulting plugin to the
// registry. It fails if the plugin name violates the identifier grammar or
// is already taken.
func (r *Registry) Register(factory Factory) error {
	p, err := factory(r.host)
	if err != nil {
		return apperr.Wrap(err, apperr.KindPlugin, "plugin factory failed", nil)
	}

	if !config.IsIdentifier(p.Name) {
		return apperr.Plugin(
			fmt.Sprintf("invalid plugin name '%s'", p.Name),
			map[string]any{"plugin": p.Name})
	}
	if _, exists := r.byName[p.Name]; exists {
		return apperr.Plugin(
			fmt.Sprintf("plugin '%s' is already registered", p.Name),
			map[string]any{"plugin": p.Name})
	}

	r.plugins = append(r.plugins, p)
	r.byName[p.Name] = p
	for _, action := range ActionNames {
		if p.Implements(action) {
			r.actions[action][p.Name] = &BoundAction{Plugin: p, Action: action}
		}
	}

	slog.Debug("Registered plugin.", "plugin", p.Name, "module_types", p.ModuleTypes)
	return nil
}

// All returns the registered plugins in registration order. A non-empty
// moduleType restricts the result to plugins that support it.
func (r *Registry) All(moduleType string) []*Plugin {
	if moduleType == "" {
		return append([]*Plugin(nil), r.plugins...)
	}
	var out []*Plugin
	for _, p := range r.plugins {
		if p.Supports(moduleType) {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the plugin registered under name, if any.
func (r *Registry) Get(name string) (*Plugin, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Handler returns the bound handler a plugin registered for an action.
func (r *Registry) Handler(action ActionName, pluginName string) (*BoundAction, bool) {
	b, ok := r.actions[action][pluginName]
	return b, ok
}
