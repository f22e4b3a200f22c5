package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
)

// Environment is the active deployment target of a context.
type Environment struct {
	Name      string
	Namespace string
	Config    *config.Environment
}

// SetEnvironment parses an environment selector of the form "name" or
// "name.namespace" (further dots join into the namespace) and makes it the
// single active environment, replacing any previous one. The name must be
// a configured environment of the project.
func (c *Context) SetEnvironment(selector string) (*Environment, error) {
	name, namespace := splitSelector(selector)
	if name == "" {
		return nil, apperr.Parameter("environment selector is empty",
			map[string]any{"selector": selector})
	}

	envConfig, ok := c.project.Environments[name]
	if !ok {
		return nil, apperr.Parameter(
			fmt.Sprintf("environment '%s' is not configured in project '%s'", name, c.project.Name),
			map[string]any{
				"environment": name,
				"selector":    selector,
				"configured":  environmentNames(c.project),
			})
	}

	env := &Environment{Name: name, Namespace: namespace, Config: envConfig}

	c.envMu.Lock()
	c.env = env
	c.envMu.Unlock()

	c.logger.Debug("Active environment set.", "environment", name, "namespace", namespace)
	return env, nil
}

// ActiveEnvironment returns the active environment, failing if none has
// been set yet.
func (c *Context) ActiveEnvironment() (*Environment, error) {
	c.envMu.RLock()
	defer c.envMu.RUnlock()

	if c.env == nil {
		return nil, apperr.Plugin("no environment is set; call SetEnvironment first", nil)
	}
	return c.env, nil
}

// splitSelector separates "name.rest.of.namespace" into name and
// namespace, applying the default namespace when absent.
func splitSelector(selector string) (name, namespace string) {
	parts := strings.Split(selector, ".")
	name = parts[0]
	if len(parts) > 1 {
		namespace = strings.Join(parts[1:], ".")
	}
	if namespace == "" {
		namespace = config.DefaultNamespace
	}
	return name, namespace
}

func environmentNames(p *config.Project) []string {
	names := make([]string, 0, len(p.Environments))
	for name := range p.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
