// Package generic provides the built-in plugin for generic modules: units
// whose build is an arbitrary shell command run in the module directory.
package generic

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
)

// Name is the plugin identifier.
const Name = "generic"

// Config is the typed configuration of a generic module.
type Config struct {
	Build *BuildConfig `hcl:"build,block"`
}

// BuildConfig describes the build command. An empty command means the
// module has nothing to build.
type BuildConfig struct {
	Command []string `hcl:"command,optional"`
}

// Factory creates the generic plugin.
func Factory(host plugin.Host) (*plugin.Plugin, error) {
	return &plugin.Plugin{
		Name:        Name,
		ModuleTypes: []string{"generic"},
		Actions: plugin.Actions{
			ParseModule:    parseModule,
			GetBuildStatus: getBuildStatus,
			BuildModule:    buildModule,
		},
	}, nil
}

func parseModule(ctx context.Context, decl *config.ModuleDeclaration) (*module.Module, error) {
	var cfg Config
	if decl.Config != nil {
		if diags := gohcl.DecodeBody(decl.Config, nil, &cfg); diags.HasErrors() {
			return nil, apperr.Configuration(
				fmt.Sprintf("invalid config for generic module '%s'", decl.Name),
				map[string]any{"module": decl.Name, "path": decl.Path, "diagnostics": diags.Error()})
		}
	}
	return &module.Module{
		Name:        decl.Name,
		Type:        decl.Type,
		Description: decl.Description,
		Path:        decl.Dir,
		Config:      &cfg,
	}, nil
}

func getBuildStatus(ctx context.Context, m *module.Module) (*module.BuildStatus, error) {
	cfg := m.Config.(*Config)
	if cfg.Build == nil || len(cfg.Build.Command) == 0 {
		return &module.BuildStatus{Ready: true, Detail: "nothing to build"}, nil
	}
	// Command builds carry no artifact metadata, so they always re-run.
	return &module.BuildStatus{Ready: false, Detail: "command builds always re-run"}, nil
}

func buildModule(ctx context.Context, m *module.Module) (*module.BuildResult, error) {
	cfg := m.Config.(*Config)
	if cfg.Build == nil || len(cfg.Build.Command) == 0 {
		return &module.BuildResult{Fresh: false}, nil
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Running build command.", "module", m.Name, "command", cfg.Build.Command)

	cmd := exec.CommandContext(ctx, cfg.Build.Command[0], cfg.Build.Command[1:]...)
	cmd.Dir = m.Path
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("build command for module '%s' failed: %w\n%s", m.Name, err, out)
	}
	return &module.BuildResult{Fresh: true, Log: string(out)}, nil
}
