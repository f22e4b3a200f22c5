package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadProject reads the project configuration file from the given root
	// directory and translates it into the agnostic model.
	LoadProject(ctx context.Context, root string) (*Project, error)

	// LoadModule reads a single module declaration file and translates it
	// into the agnostic model without interpreting its config block.
	LoadModule(ctx context.Context, path string) (*ModuleDeclaration, error)
}
