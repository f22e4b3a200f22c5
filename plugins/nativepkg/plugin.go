// Package nativepkg provides the built-in plugin for native-package
// modules: units built by delegating to a package manager script.
package nativepkg

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
const Name = "native-package"

// Config is the typed configuration of a package module.
type Config struct {
	// Manager is the package manager binary. Defaults to npm.
	Manager string `hcl:"manager,optional"`
	// Script is the script name passed to `<manager> run`. Defaults to
	// "build".
	Script string `hcl:"script,optional"`
}

// Factory creates the native-package plugin.
func Factory(host plugin.Host) (*plugin.Plugin, error) {
	return &plugin.Plugin{
		Name:        Name,
		ModuleTypes: []string{"package"},
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
				fmt.Sprintf("invalid config for package module '%s'", decl.Name),
				map[string]any{"module": decl.Name, "path": decl.Path, "diagnostics": diags.Error()})
		}
	}
	if cfg.Manager == "" {
		cfg.Manager = "npm"
	}
	if cfg.Script == "" {
		cfg.Script = "build"
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
	// Package scripts track their own freshness; the orchestrator always
	// re-runs them.
	return &module.BuildStatus{Ready: false, Detail: "package scripts always re-run"}, nil
}

func buildModule(ctx context.Context, m *module.Module) (*module.BuildResult, error) {
	cfg := m.Config.(*Config)

	logger := ctxlog.FromContext(ctx)
	logger.Info("Running package script.", "module", m.Name, "manager", cfg.Manager, "script", cfg.Script)

	cmd := exec.CommandContext(ctx, cfg.Manager, "run", cfg.Script)
	cmd.Dir = m.Path
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("package script for module '%s' failed: %w\n%s", m.Name, err, out)
	}
	return &module.BuildResult{Fresh: true, Log: string(out)}, nil
}
