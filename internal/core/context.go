// Package core contains the orchestration context: the composition root
// that owns the capability registry, the active environment, module and
// service discovery, and the handles to the task graph and version
// control collaborators.
package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/hcl"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
	"github.com/akovalev/berth/internal/scan"
	"github.com/akovalev/berth/internal/taskgraph"
	"github.com/akovalev/berth/internal/vcs"
)

// Options configures a new Context. Zero values select the production
// defaults; the Loader and Walker hooks exist for tests.
type Options struct {
	ProjectRoot string
	// Plugins are registered after the built-in plugins, in order.
	Plugins []plugin.Factory
	Workers int
	Loader  config.Loader
	Walker  scan.Walker
	Logger  *slog.Logger
}

// Context is the composition root for one project. It is created once per
// invocation and discarded with the process; no state persists across
// runs.
type Context struct {
	root     string
	project  *config.Project
	logger   *slog.Logger
	loader   config.Loader
	walker   scan.Walker
	registry *plugin.Registry
	tasks    *taskgraph.Graph
	git      *vcs.Handle

	// envMu guards the single active environment.
	envMu sync.RWMutex
	env   *Environment

	// flight collapses concurrent discovery calls into one scan; the
	// indexes are committed only after a fully successful pass.
	flight       singleflight.Group
	idxMu        sync.RWMutex
	moduleIndex  map[string]*module.Module
	serviceIndex map[string]*module.Service
}

// New creates a Context rooted at opts.ProjectRoot, loads the project
// configuration, and registers the built-in plugins followed by any
// supplied ones.
func New(ctx context.Context, opts Options) (*Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	loader := opts.Loader
	if loader == nil {
		loader = hcl.NewLoader()
	}
	walker := opts.Walker
	if walker == nil {
		walker = scan.NewWalker()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}

	root, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	c := &Context{
		root:   root,
		logger: logger,
		loader: loader,
		walker: walker,
		tasks:  taskgraph.New(workers),
	}

	c.project, err = loader.LoadProject(ctx, root)
	if err != nil {
		return nil, err
	}

	c.registry = plugin.NewRegistry(c)
	for _, factory := range builtinFactories {
		if err := c.registry.Register(factory); err != nil {
			return nil, err
		}
	}
	for _, factory := range opts.Plugins {
		if err := c.registry.Register(factory); err != nil {
			return nil, err
		}
	}

	c.git = vcs.New(c)

	logger.Debug("Context initialized.",
		"project", c.project.Name, "root", root, "plugins", len(c.registry.All("")))
	return c, nil
}

// ProjectName implements plugin.Host.
func (c *Context) ProjectName() string {
	return c.project.Name
}

// ProjectRoot implements plugin.Host and vcs.Host.
func (c *Context) ProjectRoot() string {
	return c.root
}

// Project returns the loaded project configuration.
func (c *Context) Project() *config.Project {
	return c.project
}

// RegisterPlugin adds an external plugin after construction. Registration
// order still applies: plugins registered later only win resolution for
// module types or environments the earlier ones do not claim.
func (c *Context) RegisterPlugin(factory plugin.Factory) error {
	return c.registry.Register(factory)
}

// VCS returns the version-control handle.
func (c *Context) VCS() *vcs.Handle {
	return c.git
}

// AddTask forwards a task to the task graph collaborator.
func (c *Context) AddTask(t taskgraph.Task) error {
	return c.tasks.Add(t)
}

// ProcessTasks forwards to the task graph collaborator. The context makes
// no assumptions about the order in which it runs things.
func (c *Context) ProcessTasks(ctx context.Context) ([]taskgraph.Result, error) {
	return c.tasks.Process(ctx)
}
