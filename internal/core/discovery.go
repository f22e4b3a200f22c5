package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
	"github.com/akovalev/berth/internal/scan"
)

// Modules returns the module index, scanning the project tree on first
// use. With names given, the result is restricted to those keys; unknown
// names are silently omitted (tolerant partial lookup).
func (c *Context) Modules(ctx context.Context, names ...string) (map[string]*module.Module, error) {
	if err := c.ensureScanned(ctx); err != nil {
		return nil, err
	}

	c.idxMu.RLock()
	defer c.idxMu.RUnlock()
	if len(names) == 0 {
		return c.moduleIndex, nil
	}
	subset := make(map[string]*module.Module, len(names))
	for _, name := range names {
		if m, ok := c.moduleIndex[name]; ok {
			subset[name] = m
		}
	}
	return subset, nil
}

// Services returns the service index under the same rules as Modules.
func (c *Context) Services(ctx context.Context, names ...string) (map[string]*module.Service, error) {
	if err := c.ensureScanned(ctx); err != nil {
		return nil, err
	}

	c.idxMu.RLock()
	defer c.idxMu.RUnlock()
	if len(names) == 0 {
		return c.serviceIndex, nil
	}
	subset := make(map[string]*module.Service, len(names))
	for _, name := range names {
		if s, ok := c.serviceIndex[name]; ok {
			subset[name] = s
		}
	}
	return subset, nil
}

// ensureScanned runs the discovery pass at most once per context. The
// single-flight group makes concurrent first calls share one scan instead
// of racing on the indexes.
func (c *Context) ensureScanned(ctx context.Context) error {
	c.idxMu.RLock()
	cached := c.moduleIndex != nil
	c.idxMu.RUnlock()
	if cached {
		return nil
	}

	_, err, _ := c.flight.Do("discovery", func() (any, error) {
		c.idxMu.RLock()
		cached := c.moduleIndex != nil
		c.idxMu.RUnlock()
		if cached {
			return nil, nil
		}

		modules, services, err := c.discover(ctx)
		if err != nil {
			return nil, err
		}

		// Commit only after the whole pass succeeded.
		c.idxMu.Lock()
		c.moduleIndex = modules
		c.serviceIndex = services
		c.idxMu.Unlock()
		return nil, nil
	})
	return err
}

// discover walks the project tree once, parses every module declaration
// through the globally resolved parse handler for its type, and builds the
// module and service indexes, enforcing project-wide name uniqueness.
func (c *Context) discover(ctx context.Context) (map[string]*module.Module, map[string]*module.Service, error) {
	logger := ctxlog.FromContext(ctx)

	include, err := scan.NewIgnoreFilter(c.root)
	if err != nil {
		return nil, nil, err
	}

	modules := make(map[string]*module.Module)
	services := make(map[string]*module.Service)
	declPaths := make(map[string]string)

	err = c.walker.Walk(ctx, c.root, include, func(path string) error {
		if filepath.Base(path) != config.ModuleFileName {
			return nil
		}

		decl, err := c.loader.LoadModule(ctx, path)
		if err != nil {
			return err
		}

		handler, err := c.ResolveAction(plugin.ActionParseModule, decl.Type)
		if err != nil {
			return err
		}
		m, err := handler.ParseModule(ctx, decl)
		if err != nil {
			return err
		}

		if _, exists := modules[m.Name]; exists {
			return apperr.Configuration(
				fmt.Sprintf("module '%s' is declared twice, at %s and %s",
					m.Name, c.relPath(declPaths[m.Name]), c.relPath(decl.Path)),
				map[string]any{
					"module": m.Name,
					"paths":  []string{c.relPath(declPaths[m.Name]), c.relPath(decl.Path)},
				})
		}

		for _, sd := range decl.Services {
			if prev, exists := services[sd.Name]; exists {
				return apperr.Configuration(
					fmt.Sprintf("service '%s' is declared by both module '%s' and module '%s'",
						sd.Name, prev.Module.Name, m.Name),
					map[string]any{
						"service": sd.Name,
						"modules": []string{prev.Module.Name, m.Name},
					})
			}
			svc := &module.Service{Name: sd.Name, Module: m, Spec: sd.Spec}
			m.Services = append(m.Services, svc)
			services[sd.Name] = svc
		}

		modules[m.Name] = m
		declPaths[m.Name] = decl.Path
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("Project scan complete.", "modules", len(modules), "services", len(services))
	return modules, services, nil
}

func (c *Context) relPath(path string) string {
	if rel, err := filepath.Rel(c.root, path); err == nil {
		return rel
	}
	return path
}
