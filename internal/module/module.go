// Package module defines the typed module and service records produced by
// discovery. Modules are created by the parse handler of their declared
// type and never mutated afterwards.
package module

import "github.com/zclconf/go-cty/cty"

// Module is a discovered, typed unit of buildable configuration.
type Module struct {
	Name        string
	Type        string
	Description string
	// Path is the directory containing the module's declaration file.
	Path string
	// Config is the strongly-typed configuration object produced by the
	// registered parse handler for this module's type.
	Config any
	// Services lists the services declared by this module, in declaration
	// order.
	Services []*Service
}

// Service is a named deployable unit declared inside a module.
type Service struct {
	Name string
	// Module is the owning module.
	Module *Module
	// Spec is the raw configuration fragment taken verbatim from the
	// module's declaration.
	Spec map[string]cty.Value
}

// BuildStatus reports whether a module's build output is up to date.
type BuildStatus struct {
	Ready  bool
	Detail string
}

// BuildResult is the outcome of a build action.
type BuildResult struct {
	// Fresh is true when the build produced new output rather than
	// reusing an existing artifact.
	Fresh bool
	Log   string
}
