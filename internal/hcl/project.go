package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/schema"
)

// LoadProject implements config.Loader.
func (l *Loader) LoadProject(ctx context.Context, root string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(root, config.ProjectFileName)

	if _, err := os.Stat(path); err != nil {
		return nil, apperr.Wrap(err, apperr.KindConfiguration,
			fmt.Sprintf("project configuration not found at %s", path),
			map[string]any{"path": path})
	}

	file, err := l.parseFile(path)
	if err != nil {
		return nil, err
	}

	var pf schema.ProjectFile
	if diags := gohcl.DecodeBody(file.Body, nil, &pf); diags.HasErrors() {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid project configuration in %s", path),
			map[string]any{"path": path, "diagnostics": diags.Error()})
	}
	if pf.Project == nil {
		return nil, apperr.Configuration(
			fmt.Sprintf("no project block found in %s", path),
			map[string]any{"path": path})
	}

	project, err := l.translateProject(pf.Project, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Project configuration loaded.",
		"project", project.Name, "environments", len(project.Environments))
	return project, nil
}

// translateProject converts the raw project schema into the agnostic model,
// validating identifiers and the api_version along the way.
func (l *Loader) translateProject(p *schema.Project, path string) (*config.Project, error) {
	if !config.IsIdentifier(p.Name) {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid project name '%s'", p.Name),
			map[string]any{"path": path, "name": p.Name})
	}

	version, err := semver.NewVersion(p.APIVersion)
	if err != nil {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid api_version '%s'", p.APIVersion),
			map[string]any{"path": path, "api_version": p.APIVersion})
	}
	if !l.apiConstraint.Check(version) {
		return nil, apperr.Configuration(
			fmt.Sprintf("unsupported api_version '%s' (supported: %s)", p.APIVersion, apiConstraint),
			map[string]any{"path": path, "api_version": p.APIVersion, "supported": apiConstraint})
	}

	project := &config.Project{
		Name:               p.Name,
		APIVersion:         p.APIVersion,
		DefaultEnvironment: p.DefaultEnvironment,
		Environments:       make(map[string]*config.Environment, len(p.Environments)),
	}

	for _, env := range p.Environments {
		if !config.IsIdentifier(env.Name) {
			return nil, apperr.Configuration(
				fmt.Sprintf("invalid environment name '%s'", env.Name),
				map[string]any{"path": path, "environment": env.Name})
		}
		if _, exists := project.Environments[env.Name]; exists {
			return nil, apperr.Configuration(
				fmt.Sprintf("environment '%s' declared twice", env.Name),
				map[string]any{"path": path, "environment": env.Name})
		}
		for slot, provider := range env.Providers {
			if !config.IsIdentifier(provider) {
				return nil, apperr.Configuration(
					fmt.Sprintf("invalid provider '%s' for slot '%s' in environment '%s'", provider, slot, env.Name),
					map[string]any{"path": path, "environment": env.Name, "slot": slot, "provider": provider})
			}
		}

		var body = hclBodyOrNil(env.Variables)
		variables, err := attrValues(body, path)
		if err != nil {
			return nil, err
		}

		project.Environments[env.Name] = &config.Environment{
			Name:      env.Name,
			Providers: env.Providers,
			Variables: variables,
		}
	}

	if project.DefaultEnvironment != "" {
		if _, ok := project.Environments[project.DefaultEnvironment]; !ok {
			return nil, apperr.Configuration(
				fmt.Sprintf("default_environment '%s' is not a configured environment", project.DefaultEnvironment),
				map[string]any{"path": path, "environment": project.DefaultEnvironment})
		}
	}

	return project, nil
}
