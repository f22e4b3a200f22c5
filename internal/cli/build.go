package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/akovalev/berth/internal/module"
	"github.com/akovalev/berth/internal/plugin"
	"github.com/akovalev/berth/internal/vcs"
)

// timeResolution rounds task durations for display.
const timeResolution = time.Millisecond

// buildTask adapts one module build into the task graph contract.
type buildTask struct {
	module  *module.Module
	handler *plugin.BoundAction
}

func (t *buildTask) Name() string        { return "build." + t.module.Name }
func (t *buildTask) DependsOn() []string { return nil }

func (t *buildTask) Run(ctx context.Context) error {
	_, err := t.handler.BuildModule(ctx, t.module)
	return err
}

func newBuildCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "build [module...]",
		Short: "Build modules using the plugins enabled for the active environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			if err := selectEnvironment(c); err != nil {
				return err
			}

			modules, err := c.Modules(ctx, args...)
			if err != nil {
				return err
			}

			for _, name := range sortedKeys(modules) {
				m := modules[name]
				handler, err := c.ResolveActionForEnvironment(plugin.ActionBuildModule, m.Type)
				if err != nil {
					return err
				}
				if err := c.AddTask(&buildTask{module: m, handler: handler}); err != nil {
					return err
				}
			}

			results, processErr := c.ProcessTasks(ctx)

			w := table.NewWriter()
			w.SetOutputMirror(out)
			w.AppendHeader(table.Row{"TASK", "RESULT", "DURATION"})
			for _, res := range results {
				outcome := "ok"
				if res.Err != nil {
					outcome = res.Err.Error()
				}
				w.AppendRow(table.Row{res.Task, outcome, res.Duration.Round(timeResolution)})
			}
			w.Render()
			return processErr
		},
	}
}

func newStatusCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status [module...]",
		Short: "Report build status per module and the working tree state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, err := newContext(cmd)
			if err != nil {
				return err
			}
			if err := selectEnvironment(c); err != nil {
				return err
			}

			modules, err := c.Modules(ctx, args...)
			if err != nil {
				return err
			}

			w := table.NewWriter()
			w.SetOutputMirror(out)
			w.AppendHeader(table.Row{"MODULE", "READY", "DETAIL"})
			for _, name := range sortedKeys(modules) {
				m := modules[name]
				handler, err := c.ResolveActionForEnvironment(plugin.ActionGetBuildStatus, m.Type)
				if err != nil {
					return err
				}
				status, err := handler.GetBuildStatus(ctx, m)
				if err != nil {
					return err
				}
				w.AppendRow(table.Row{m.Name, status.Ready, status.Detail})
			}
			w.Render()

			printRepoState(ctx, out, c.VCS())
			return nil
		},
	}
}

// printRepoState appends the version-control summary. A missing repository
// is not an error for status reporting.
func printRepoState(ctx context.Context, out io.Writer, handle *vcs.Handle) {
	head, err := handle.HeadRef(ctx)
	if errors.Is(err, vcs.ErrNoRepository) {
		fmt.Fprintln(out, "vcs: not a git repository")
		return
	}
	if err != nil {
		fmt.Fprintf(out, "vcs: %v\n", err)
		return
	}

	dirty, err := handle.DirtyFiles(ctx)
	if err != nil {
		fmt.Fprintf(out, "vcs: HEAD %s (%v)\n", head, err)
		return
	}
	if len(dirty) == 0 {
		fmt.Fprintf(out, "vcs: HEAD %s, working tree clean\n", head)
		return
	}
	fmt.Fprintf(out, "vcs: HEAD %s, %d dirty file(s)\n", head, len(dirty))
}
