package taskgraph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akovalev/berth/internal/ctxlog"
)

// Result records the outcome of one processed task.
type Result struct {
	Task     string
	Err      error
	Duration time.Duration
}

// Process runs all queued tasks, respecting dependencies, with at most the
// configured number of workers running concurrently. Tasks are executed in
// waves: every task whose dependencies have completed runs in the current
// wave. The first task failure cancels the remaining waves.
//
// On success the queue is drained; after a failure the queue is left
// untouched so the caller can inspect it. Results are returned for every
// task that started, sorted by task name for determinism.
func (g *Graph) Process(ctx context.Context) ([]Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	logger := ctxlog.FromContext(ctx)

	if err := g.link(); err != nil {
		return nil, err
	}
	if err := g.detectCycles(); err != nil {
		return nil, err
	}

	var (
		resMu   sync.Mutex
		results []Result
	)
	done := make(map[string]bool, len(g.nodes))

	for len(done) < len(g.nodes) {
		var wave []string
		for name, n := range g.nodes {
			if done[name] {
				continue
			}
			ready := true
			for depName := range n.deps {
				if !done[depName] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, name)
			}
		}
		if len(wave) == 0 {
			// Unreachable after the cycle check, kept as a guard.
			return results, fmt.Errorf("no runnable tasks remain with %d still pending", len(g.nodes)-len(done))
		}
		sort.Strings(wave)
		logger.Debug("Processing task wave.", "tasks", wave)

		eg, waveCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.workers)
		for _, name := range wave {
			task := g.nodes[name].task
			eg.Go(func() error {
				start := time.Now()
				err := task.Run(waveCtx)
				resMu.Lock()
				results = append(results, Result{Task: task.Name(), Err: err, Duration: time.Since(start)})
				resMu.Unlock()
				if err != nil {
					return fmt.Errorf("task '%s' failed: %w", task.Name(), err)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			sortResults(results)
			return results, err
		}
		for _, name := range wave {
			done[name] = true
		}
	}

	g.nodes = make(map[string]*node)
	sortResults(results)
	return results, nil
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].Task < results[j].Task })
}
