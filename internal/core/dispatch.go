package core

import (
	"fmt"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/plugin"
)

// ResolveAction finds the handler for an action by scanning the registered
// plugins in registration order, ignoring the active environment. An empty
// moduleType matches plugins of any module type.
//
// Module parsing uses this global path: declarations must parse the same
// way no matter which environment is active.
func (c *Context) ResolveAction(action plugin.ActionName, moduleType string) (*plugin.BoundAction, error) {
	for _, p := range c.registry.All(moduleType) {
		if p.Implements(action) {
			handler, _ := c.registry.Handler(action, p.Name)
			return handler, nil
		}
	}
	return nil, noHandlerError(action, moduleType, "")
}

// ResolveActionForEnvironment is ResolveAction restricted to plugins whose
// name is among the provider types configured for the active environment.
// It requires SetEnvironment to have succeeded.
func (c *Context) ResolveActionForEnvironment(action plugin.ActionName, moduleType string) (*plugin.BoundAction, error) {
	env, err := c.ActiveEnvironment()
	if err != nil {
		return nil, err
	}

	enabled := env.Config.ProviderTypes()
	for _, p := range c.registry.All(moduleType) {
		if _, ok := enabled[p.Name]; !ok {
			continue
		}
		if p.Implements(action) {
			handler, _ := c.registry.Handler(action, p.Name)
			return handler, nil
		}
	}
	return nil, noHandlerError(action, moduleType, env.Name)
}

func noHandlerError(action plugin.ActionName, moduleType, environment string) error {
	detail := map[string]any{"action": string(action)}
	msg := fmt.Sprintf("no registered plugin handles action '%s'", action)
	if moduleType != "" {
		detail["module_type"] = moduleType
		msg += fmt.Sprintf(" for module type '%s'", moduleType)
	}
	if environment != "" {
		detail["environment"] = environment
		msg += fmt.Sprintf(" in environment '%s'", environment)
	}
	return apperr.Parameter(msg, detail)
}
