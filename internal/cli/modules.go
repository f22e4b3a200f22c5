package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/akovalev/berth/internal/module"
)

func newModulesCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "modules [name...]",
		Short: "List the modules discovered in the project tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, err := newContext(cmd)
			if err != nil {
				return err
			}

			modules, err := c.Modules(ctx, args...)
			if err != nil {
				return err
			}

			w := table.NewWriter()
			w.SetOutputMirror(out)
			w.AppendHeader(table.Row{"NAME", "TYPE", "SERVICES", "PATH", "DESCRIPTION"})
			for _, name := range sortedKeys(modules) {
				m := modules[name]
				w.AppendRow(table.Row{
					m.Name, m.Type, serviceNames(m), relOrSelf(c.ProjectRoot(), m.Path), m.Description,
				})
			}
			w.Render()
			return nil
		},
	}
}

func newServicesCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "services [name...]",
		Short: "List the services declared by the project's modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, err := newContext(cmd)
			if err != nil {
				return err
			}

			services, err := c.Services(ctx, args...)
			if err != nil {
				return err
			}

			w := table.NewWriter()
			w.SetOutputMirror(out)
			w.AppendHeader(table.Row{"NAME", "MODULE", "TYPE"})
			for _, name := range sortedKeys(services) {
				s := services[name]
				w.AppendRow(table.Row{s.Name, s.Module.Name, s.Module.Type})
			}
			w.Render()
			return nil
		},
	}
}

func newValidateCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the project configuration and all module declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, err := newContext(cmd)
			if err != nil {
				return err
			}

			modules, err := c.Modules(ctx)
			if err != nil {
				return err
			}
			services, err := c.Services(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "OK: project '%s' with %d modules and %d services\n",
				c.ProjectName(), len(modules), len(services))
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func serviceNames(m *module.Module) string {
	names := make([]string, 0, len(m.Services))
	for _, s := range m.Services {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func relOrSelf(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
