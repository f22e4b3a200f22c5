// Package container provides the built-in plugin for container modules,
// built as docker images.
package container

import (
	"context"
	"fmt"
	"os/exec"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
)

// Name is the plugin identifier.
const Name = "container"

// Config is the typed configuration of a container module.
type Config struct {
	// Image is the tag the build produces. Defaults to "<module>:latest".
	Image string `hcl:"image,optional"`
	// Dockerfile is resolved relative to the module directory.
	Dockerfile string            `hcl:"dockerfile,optional"`
	BuildArgs  map[string]string `hcl:"build_args,optional"`
}

// Factory creates the container plugin.
func Factory(host plugin.Host) (*plugin.Plugin, error) {
	return &plugin.Plugin{
		Name:        Name,
		ModuleTypes: []string{"container"},
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
				fmt.Sprintf("invalid config for container module '%s'", decl.Name),
				map[string]any{"module": decl.Name, "path": decl.Path, "diagnostics": diags.Error()})
		}
	}
	if cfg.Image == "" {
		cfg.Image = fmt.Sprintf("%s:latest", decl.Name)
	}
	if cfg.Dockerfile == "" {
		cfg.Dockerfile = "Dockerfile"
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
	cmd := exec.CommandContext(ctx, "docker", "image", "inspect", cfg.Image)
	if err := cmd.Run(); err != nil {
		return &module.BuildStatus{Ready: false, Detail: fmt.Sprintf("image %s not present", cfg.Image)}, nil
	}
	return &module.BuildStatus{Ready: true, Detail: fmt.Sprintf("image %s present", cfg.Image)}, nil
}

func buildModule(ctx context.Context, m *module.Module) (*module.BuildResult, error) {
	cfg := m.Config.(*Config)

	args := []string{"build", "-t", cfg.Image, "-f", cfg.Dockerfile}
	keys := make([]string, 0, len(cfg.BuildArgs))
	for key := range cfg.BuildArgs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", key, cfg.BuildArgs[key]))
	}
	args = append(args, ".")

	logger := ctxlog.FromContext(ctx)
	logger.Info("Building container image.", "module", m.Name, "image", cfg.Image)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = m.Path
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("docker build for module '%s' failed: %w\n%s", m.Name, err, out)
	}
	return &module.BuildResult{Fresh: true, Log: string(out)}, nil
}
