package generic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/hcl"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/testutil"
)

// loadDecl parses a berth.hcl from source and returns its declaration.
func loadDecl(t *testing.T, src string) *config.ModuleDeclaration {
	t.Helper()
	root := testutil.WriteProject(t, map[string]string{config.ModuleFileName: src})
	decl, err := hcl.NewLoader().LoadModule(context.Background(), filepath.Join(root, config.ModuleFileName))
	require.NoError(t, err)
	return decl
}

func TestParseModule(t *testing.T) {
	decl := loadDecl(t, `
module "builder" {
  type        = "generic"
  description = "runs make"

  config {
    build {
      command = ["make", "all"]
    }
  }
}
`)

	m, err := parseModule(context.Background(), decl)
	require.NoError(t, err)
	assert.Equal(t, "builder", m.Name)
	assert.Equal(t, "runs make", m.Description)

	cfg := m.Config.(*Config)
	require.NotNil(t, cfg.Build)
	assert.Equal(t, []string{"make", "all"}, cfg.Build.Command)
}

func TestParseModuleNoConfig(t *testing.T) {
	decl := loadDecl(t, `
module "empty" {
  type = "generic"
}
`)

	m, err := parseModule(context.Background(), decl)
	require.NoError(t, err)
	cfg := m.Config.(*Config)
	assert.Nil(t, cfg.Build)
}

func TestParseModuleInvalidConfig(t *testing.T) {
	decl := loadDecl(t, `
module "broken" {
  type = "generic"

  config {
    build {
      command = "not-a-list"
    }
  }
}
`)

	_, err := parseModule(context.Background(), decl)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
}

func TestGetBuildStatus(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       *Config
		wantReady bool
	}{
		{name: "no build block", cfg: &Config{}, wantReady: true},
		{name: "empty command", cfg: &Config{Build: &BuildConfig{}}, wantReady: true},
		{name: "with command", cfg: &Config{Build: &BuildConfig{Command: []string{"make"}}}, wantReady: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, err := getBuildStatus(context.Background(), &module.Module{Name: "m", Config: tc.cfg})
			require.NoError(t, err)
			assert.Equal(t, tc.wantReady, status.Ready)
		})
	}
}

func TestBuildModuleRunsCommand(t *testing.T) {
	dir := t.TempDir()
	m := &module.Module{
		Name: "shell",
		Path: dir,
		Config: &Config{
			Build: &BuildConfig{Command: []string{"sh", "-c", "echo built"}},
		},
	}

	result, err := buildModule(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, result.Fresh)
	assert.Contains(t, result.Log, "built")
}

func TestBuildModuleNothingToBuild(t *testing.T) {
	m := &module.Module{Name: "empty", Config: &Config{}}

	result, err := buildModule(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, result.Fresh)
}

func TestBuildModuleCommandFailure(t *testing.T) {
	m := &module.Module{
		Name: "failing",
		Path: t.TempDir(),
		Config: &Config{
			Build: &BuildConfig{Command: []string{"sh", "-c", "exit 3"}},
		},
	}

	_, err := buildModule(context.Background(), m)
	require.Error(t, err)
}
