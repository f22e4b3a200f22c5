package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/schema"
)

// LoadModule implements config.Loader.
func (l *Loader) LoadModule(ctx context.Context, path string) (*config.ModuleDeclaration, error) {
	logger := ctxlog.FromContext(ctx)

	file, err := l.parseFile(path)
	if err != nil {
		return nil, err
	}

	var mf schema.ModuleFile
	if diags := gohcl.DecodeBody(file.Body, nil, &mf); diags.HasErrors() {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid module declaration in %s", path),
			map[string]any{"path": path, "diagnostics": diags.Error()})
	}
	if mf.Module == nil {
		return nil, apperr.Configuration(
			fmt.Sprintf("no module block found in %s", path),
			map[string]any{"path": path})
	}

	decl, err := translateModule(mf.Module, path)
	if err != nil {
		return nil, err
	}

	logger.Debug("Module declaration loaded.",
		"module", decl.Name, "type", decl.Type, "services", len(decl.Services))
	return decl, nil
}

// translateModule converts the raw module schema into the agnostic model.
// The config block body is passed through untouched; decoding it belongs to
// the parse handler of the declared module type.
func translateModule(m *schema.Module, path string) (*config.ModuleDeclaration, error) {
	if !config.IsIdentifier(m.Name) {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid module name '%s' in %s", m.Name, path),
			map[string]any{"path": path, "module": m.Name})
	}
	if !config.IsIdentifier(m.Type) {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid module type '%s' in %s", m.Type, path),
			map[string]any{"path": path, "module": m.Name, "type": m.Type})
	}

	decl := &config.ModuleDeclaration{
		Name:        m.Name,
		Type:        m.Type,
		Description: m.Description,
		Path:        path,
		Dir:         filepath.Dir(path),
		Config:      hclBodyOrNil(m.Config),
	}

	seen := make(map[string]struct{}, len(m.Services))
	for _, svc := range m.Services {
		if !config.IsIdentifier(svc.Name) {
			return nil, apperr.Configuration(
				fmt.Sprintf("invalid service name '%s' in module '%s'", svc.Name, m.Name),
				map[string]any{"path": path, "module": m.Name, "service": svc.Name})
		}
		if _, dup := seen[svc.Name]; dup {
			return nil, apperr.Configuration(
				fmt.Sprintf("service '%s' declared twice in module '%s'", svc.Name, m.Name),
				map[string]any{"path": path, "module": m.Name, "service": svc.Name})
		}
		seen[svc.Name] = struct{}{}

		spec, err := attrValues(svc.Body, path)
		if err != nil {
			return nil, err
		}
		decl.Services = append(decl.Services, &config.ServiceDeclaration{
			Name: svc.Name,
			Spec: spec,
		})
	}

	return decl, nil
}

// hclBodyOrNil unwraps an optional attribute block into its body.
func hclBodyOrNil(block *schema.AttrsBlock) hcl.Body {
	if block == nil {
		return nil
	}
	return block.Body
}
