// Package taskgraph provides the dependency-aware task collaborator the
// orchestration core forwards work to. The core only adds tasks and asks
// for them to be processed; ordering and concurrency decisions live here.
package taskgraph

import (
	"context"
	"fmt"
	"sync"
)

// Task is a unit of work with a unique name and optional dependencies on
// other tasks by name.
type Task interface {
	Name() string
	DependsOn() []string
	Run(ctx context.Context) error
}

// Graph accumulates tasks between Process calls. All operations are
// concurrency-safe.
type Graph struct {
	mu      sync.Mutex
	workers int
	nodes   map[string]*node
}

// node is a single vertex. Edges are resolved from DependsOn names when
// processing starts.
type node struct {
	task       Task
	deps       map[string]*node
	dependents map[string]*node
}

// New creates an empty graph. Workers bounds how many tasks may run
// concurrently during Process; values below one mean a single worker.
func New(workers int) *Graph {
	if workers < 1 {
		workers = 1
	}
	return &Graph{
		workers: workers,
		nodes:   make(map[string]*node),
	}
}

// Add queues a task for the next Process call. Adding two tasks with the
// same name is an error.
func (g *Graph) Add(t Task) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := t.Name()
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("task '%s' already added", name)
	}
	g.nodes[name] = &node{
		task:       t,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	return nil
}

// Len returns the number of queued tasks.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// link resolves DependsOn names into edges. Caller holds the lock.
func (g *Graph) link() error {
	for name, n := range g.nodes {
		for _, depName := range n.task.DependsOn() {
			if depName == name {
				return fmt.Errorf("task '%s' depends on itself", name)
			}
			dep, ok := g.nodes[depName]
			if !ok {
				return fmt.Errorf("task '%s' depends on unknown task '%s'", name, depName)
			}
			n.deps[depName] = dep
			dep.dependents[name] = n
		}
	}
	return nil
}

// detectCycles checks the linked graph for cycles using depth-first search
// with permanent and temporary marks. Caller holds the lock.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(name string, n *node) error
	visit = func(name string, n *node) error {
		if permanent[name] {
			return nil
		}
		if temporary[name] {
			return fmt.Errorf("dependency cycle detected involving task '%s'", name)
		}
		temporary[name] = true
		for depName, dep := range n.dependents {
			if err := visit(depName, dep); err != nil {
				return err
			}
		}
		delete(temporary, name)
		permanent[name] = true
		return nil
	}

	for name, n := range g.nodes {
		if !permanent[name] {
			if err := visit(name, n); err != nil {
				return err
			}
		}
	}
	return nil
}
