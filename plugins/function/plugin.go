// Package function provides the built-in plugin for function modules. A
// function module's build packages its directory into a deployable zip
// archive under the project's .berth/build directory.
package function

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
)

// Name is the plugin identifier.
const Name = "generic-function"

// buildDir is where function archives land, relative to the project root.
const buildDir = ".berth/build"

// Config is the typed configuration of a function module.
type Config struct {
	// Handler is the entry point the target runtime invokes.
	Handler string `hcl:"handler"`
	Runtime string `hcl:"runtime,optional"`

	// archivePath is computed at parse time from the project root.
	archivePath string
}

// Factory creates the function plugin, bound to the host for the project
// root the archives are placed under.
func Factory(host plugin.Host) (*plugin.Plugin, error) {
	p := &parser{root: host.ProjectRoot()}
	return &plugin.Plugin{
		Name:        Name,
		ModuleTypes: []string{"function"},
		Actions: plugin.Actions{
			ParseModule:    p.parseModule,
			GetBuildStatus: getBuildStatus,
			BuildModule:    buildModule,
		},
	}, nil
}

type parser struct {
	root string
}

func (p *parser) parseModule(ctx context.Context, decl *config.ModuleDeclaration) (*module.Module, error) {
	if decl.Config == nil {
		return nil, apperr.Configuration(
			fmt.Sprintf("function module '%s' requires a config block", decl.Name),
			map[string]any{"module": decl.Name, "path": decl.Path})
	}
	var cfg Config
	if diags := gohcl.DecodeBody(decl.Config, nil, &cfg); diags.HasErrors() {
		return nil, apperr.Configuration(
			fmt.Sprintf("invalid config for function module '%s'", decl.Name),
			map[string]any{"module": decl.Name, "path": decl.Path, "diagnostics": diags.Error()})
	}
	if cfg.Runtime == "" {
		cfg.Runtime = "go"
	}
	cfg.archivePath = filepath.Join(p.root, buildDir, decl.Name+".zip")

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
	if _, err := os.Stat(cfg.archivePath); err != nil {
		return &module.BuildStatus{Ready: false, Detail: "archive not built"}, nil
	}
	return &module.BuildStatus{Ready: true, Detail: fmt.Sprintf("archive at %s", cfg.archivePath)}, nil
}

func buildModule(ctx context.Context, m *module.Module) (*module.BuildResult, error) {
	cfg := m.Config.(*Config)

	logger := ctxlog.FromContext(ctx)
	logger.Info("Packaging function module.", "module", m.Name, "archive", cfg.archivePath)

	if err := os.MkdirAll(filepath.Dir(cfg.archivePath), 0o755); err != nil {
		return nil, err
	}
	if err := archiveDir(m.Path, cfg.archivePath); err != nil {
		return nil, fmt.Errorf("failed to package function module '%s': %w", m.Name, err)
	}
	return &module.BuildResult{
		Fresh: true,
		Log:   fmt.Sprintf("packaged %s into %s", m.Path, cfg.archivePath),
	}, nil
}

// archiveDir zips the contents of dir into dest, storing paths relative to
// dir. The module declaration file itself is not part of the artifact.
func archiveDir(dir, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == config.ModuleFileName {
			return nil
		}
		f, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(f, src)
		return err
	})
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
