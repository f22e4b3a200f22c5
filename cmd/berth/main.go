package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/akovalev/berth/internal/cli"
)

// main is the entrypoint for the berth application.
func main() {
	// Use a minimal logger until the command configures the full one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the command execution for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	rootCmd := cli.NewRootCmd(outW)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}
