package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/scan"
	"github.com/akovalev/berth/plugins/container"
)

// countingWalker wraps the real walker and counts full scans, so tests can
// observe whether discovery hit the filesystem again.
type countingWalker struct {
	inner scan.Walker
	scans atomic.Int64
}

func newCountingWalker() *countingWalker {
	return &countingWalker{inner: scan.NewWalker()}
}

func (w *countingWalker) Walk(ctx context.Context, root string, include func(rel string) bool, fn func(path string) error) error {
	w.scans.Add(1)
	return w.inner.Walk(ctx, root, include, fn)
}

var demoProjectFiles = map[string]string{
	"api/berth.hcl": `
module "api" {
  type        = "container"
  description = "HTTP API"

  config {
    image = "demo/api"
  }

  service "web" {
    port = 8080
  }
}
`,
	"jobs/berth.hcl": `
module "jobs" {
  type = "generic"

  config {
    build {
      command = ["make", "jobs"]
    }
  }

  service "worker" {}
}
`,
	"fn/berth.hcl": `
module "resize" {
  type = "function"

  config {
    handler = "Resize"
  }
}
`,
}

func TestModulesAndServices(t *testing.T) {
	c := newTestContext(t, cloneFiles(demoProjectFiles), Options{})
	ctx := context.Background()

	modules, err := c.Modules(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 3)

	api := modules["api"]
	require.NotNil(t, api)
	assert.Equal(t, "container", api.Type)
	assert.Equal(t, "HTTP API", api.Description)
	cfg, ok := api.Config.(*container.Config)
	require.True(t, ok, "parse handler must produce the typed config")
	assert.Equal(t, "demo/api", cfg.Image)
	require.Len(t, api.Services, 1)
	assert.Equal(t, "web", api.Services[0].Name)

	services, err := c.Services(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "api", services["web"].Module.Name)
	assert.Equal(t, "jobs", services["worker"].Module.Name)
}

func TestModulesSubset(t *testing.T) {
	c := newTestContext(t, cloneFiles(demoProjectFiles), Options{})
	ctx := context.Background()

	subset, err := c.Modules(ctx, "api", "resize")
	require.NoError(t, err)
	require.Len(t, subset, 2)
	assert.Contains(t, subset, "api")
	assert.Contains(t, subset, "resize")

	// Unknown names are silently omitted.
	subset, err = c.Modules(ctx, "api", "nope")
	require.NoError(t, err)
	require.Len(t, subset, 1)
	assert.Contains(t, subset, "api")

	svcSubset, err := c.Services(ctx, "worker", "nope")
	require.NoError(t, err)
	require.Len(t, svcSubset, 1)
	assert.Contains(t, svcSubset, "worker")
}

func TestModulesScansOnce(t *testing.T) {
	walker := newCountingWalker()
	c := newTestContext(t, cloneFiles(demoProjectFiles), Options{Walker: walker})
	ctx := context.Background()

	first, err := c.Modules(ctx)
	require.NoError(t, err)
	second, err := c.Modules(ctx)
	require.NoError(t, err)
	_, err = c.Services(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), walker.scans.Load())
	assert.Equal(t, first, second)
}

func TestConcurrentDiscoveryScansOnce(t *testing.T) {
	walker := newCountingWalker()
	c := newTestContext(t, cloneFiles(demoProjectFiles), Options{Walker: walker})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Modules(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), walker.scans.Load())
}

func TestDuplicateModuleName(t *testing.T) {
	files := cloneFiles(demoProjectFiles)
	files["copy/berth.hcl"] = `
module "api" {
  type = "generic"
}
`
	c := newTestContext(t, files, Options{})

	_, err := c.Modules(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "api", appErr.Detail["module"])
	paths, ok := appErr.Detail["paths"].([]string)
	require.True(t, ok)
	assert.Len(t, paths, 2)
}

func TestDuplicateServiceName(t *testing.T) {
	files := cloneFiles(demoProjectFiles)
	files["gateway/berth.hcl"] = `
module "gateway" {
  type = "generic"

  service "web" {}
}
`
	c := newTestContext(t, files, Options{})

	_, err := c.Modules(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "web", appErr.Detail["service"])
	modules, ok := appErr.Detail["modules"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"api", "gateway"}, modules)
}

func TestDiscoveryFailureLeavesNoCache(t *testing.T) {
	files := cloneFiles(demoProjectFiles)
	files["bad/berth.hcl"] = `
module "bad" {
  type = "unknown-type"
}
`
	walker := newCountingWalker()
	c := newTestContext(t, files, Options{Walker: walker})
	ctx := context.Background()

	_, err := c.Modules(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParameter), "no parse handler for the declared type")

	// A failed pass commits nothing, so the next call scans again.
	_, err = c.Modules(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(2), walker.scans.Load())
}

func TestDiscoveryHonorsIgnoreFile(t *testing.T) {
	files := cloneFiles(demoProjectFiles)
	files[".berthignore"] = "jobs/\n"
	c := newTestContext(t, files, Options{})

	modules, err := c.Modules(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, modules, "jobs")
	assert.Contains(t, modules, "api")
}

func cloneFiles(files map[string]string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}
