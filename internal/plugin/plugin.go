// Package plugin provides the capability registry for the orchestration
// core.
//
// A plugin is a flat record: a unique name, the set of module types it
// supports, and an optional handler per recognized action. The registry
// stores plugins in registration order and, per action, a lookup from
// plugin name to its handler. Resolution over this structure lives in the
// core package; this package only owns registration and bookkeeping.
package plugin

import (
	"context"
	"slices"

	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/module"
)

// ActionName identifies a capability a plugin may implement.
type ActionName string

const (
	// ActionParseModule turns a raw module declaration into a typed module.
	ActionParseModule ActionName = "parseModule"
	// ActionGetBuildStatus reports whether a module's build output is
	// current.
	ActionGetBuildStatus ActionName = "getBuildStatus"
	// ActionBuildModule performs a module build.
	ActionBuildModule ActionName = "buildModule"
)

// ActionNames lists the recognized actions in a fixed order.
var ActionNames = []ActionName{ActionParseModule, ActionGetBuildStatus, ActionBuildModule}

// Handler signatures, one per recognized action.
type (
	ParseModuleFn    func(ctx context.Context, decl *config.ModuleDeclaration) (*module.Module, error)
	GetBuildStatusFn func(ctx context.Context, m *module.Module) (*module.BuildStatus, error)
	BuildModuleFn    func(ctx context.Context, m *module.Module) (*module.BuildResult, error)
)

// Actions holds a plugin's capability handlers. Nil fields mean the plugin
// does not implement that action.
type Actions struct {
	ParseModule    ParseModuleFn
	GetBuildStatus GetBuildStatusFn
	BuildModule    BuildModuleFn
}

// Plugin is a registered provider of zero or more capabilities.
type Plugin struct {
	// Name is the plugin's unique identifier, validated against the
	// identifier grammar at registration time.
	Name string
	// ModuleTypes is the set of module types the plugin supports.
	ModuleTypes []string
	Actions     Actions
}

// Supports reports whether the plugin declares support for the given
// module type.
func (p *Plugin) Supports(moduleType string) bool {
	return slices.Contains(p.ModuleTypes, moduleType)
}

// Implements reports whether the plugin provides a handler for the action.
func (p *Plugin) Implements(action ActionName) bool {
	switch action {
	case ActionParseModule:
		return p.Actions.ParseModule != nil
	case ActionGetBuildStatus:
		return p.Actions.GetBuildStatus != nil
	case ActionBuildModule:
		return p.Actions.BuildModule != nil
	}
	return false
}

// Host is the surface a plugin factory receives from the owning context.
// It gives plugins read access to project identity without exposing the
// composition root itself.
type Host interface {
	ProjectName() string
	ProjectRoot() string
}

// Factory produces a plugin bound to its host. The registry invokes it
// exactly once, at registration time.
type Factory func(host Host) (*Plugin, error)

// BoundAction is a handler bound to the plugin that owns it. Callers
// invoke the method matching the action the dispatcher resolved; arguments
// are forwarded to the plugin handler unmodified.
type BoundAction struct {
	Plugin *Plugin
	Action ActionName
}

func (b *BoundAction) ParseModule(ctx context.Context, decl *config.ModuleDeclaration) (*module.Module, error) {
	return b.Plugin.Actions.ParseModule(ctx, decl)
}

func (b *BoundAction) GetBuildStatus(ctx context.Context, m *module.Module) (*module.BuildStatus, error) {
	return b.Plugin.Actions.GetBuildStatus(ctx, m)
}

func (b *BoundAction) BuildModule(ctx context.Context, m *module.Module) (*module.BuildResult, error) {
	return b.Plugin.Actions.BuildModule(ctx, m)
}
