// Package cli wires the berth command tree. Commands construct a core
// context from the flag-selected project root and delegate to it; all
// orchestration decisions live in the core package.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akovalev/berth/internal/core"
	"github.com/akovalev/berth/internal/ctxlog"
	"github.com/akovalev/berth/pkg/version"
)

// NewRootCmd builds the root command with all subcommands attached.
// Output is written to out so tests can capture it.
func NewRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "berth",
		Short:         "berth orchestrates module discovery and builds across deployment environments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().String("root", ".", "Path to the project root")
	rootCmd.PersistentFlags().String("env", "", "Environment selector, e.g. 'prod' or 'prod.team-a'")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log output format (text|json)")
	rootCmd.PersistentFlags().Int("workers", 4, "Number of concurrent workers for task processing")

	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))

	// Env support: BERTH_ROOT, BERTH_ENV, etc.
	viper.SetEnvPrefix("BERTH")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newModulesCmd(out))
	rootCmd.AddCommand(newServicesCmd(out))
	rootCmd.AddCommand(newBuildCmd(out))
	rootCmd.AddCommand(newStatusCmd(out))
	rootCmd.AddCommand(newValidateCmd(out))
	rootCmd.AddCommand(newVersionCmd(out))

	return rootCmd
}

// newLogger configures an slog.Logger from the bound settings.
func newLogger(out io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(viper.GetString("log_level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(viper.GetString("log_format")) {
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log-format: must be 'text' or 'json'")
	}
}

// newContext builds the core context for a command invocation and returns
// it with a logger-carrying context.
func newContext(cmd *cobra.Command) (*core.Context, context.Context, error) {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	c, err := core.New(ctx, core.Options{
		ProjectRoot: viper.GetString("root"),
		Workers:     viper.GetInt("workers"),
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, ctx, nil
}

// selectEnvironment applies the --env flag, falling back to the project's
// default environment. Commands that need an environment call this.
func selectEnvironment(c *core.Context) error {
	selector := viper.GetString("env")
	if selector == "" {
		selector = c.Project().DefaultEnvironment
	}
	if selector == "" {
		return fmt.Errorf("no environment selected: pass --env or set default_environment in %s", "project.hcl")
	}
	_, err := c.SetEnvironment(selector)
	return err
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(out, version.String())
			return err
		},
	}
}
