package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

const (
	// ProjectFileName is the fixed name of the project configuration file,
	// expected at the project root.
	ProjectFileName = "project.hcl"

	// ModuleFileName is the fixed name of a module declaration file. Any
	// file with this base name found during discovery is treated as a
	// module declaration.
	ModuleFileName = "berth.hcl"

	// IgnoreFileName is the optional ignore file at the project root,
	// using gitignore syntax, that excludes paths from discovery.
	IgnoreFileName = ".berthignore"

	// DefaultNamespace is used when an environment selector carries no
	// namespace part.
	DefaultNamespace = "default"
)

// Project is the parsed project configuration.
type Project struct {
	Name       string
	APIVersion string
	// DefaultEnvironment names the environment used when the caller does
	// not select one explicitly. Empty when not configured.
	DefaultEnvironment string
	Environments       map[string]*Environment
}

// Environment is one environment block of the project configuration.
type Environment struct {
	Name string
	// Providers maps a provider slot to the plugin name that fulfils it.
	// The set of values determines which plugins environment-scoped
	// resolution may return.
	Providers map[string]string
	Variables map[string]cty.Value
}

// ProviderTypes returns the set of plugin names the environment has
// configured, i.e. the values of the provider-slot mapping.
func (e *Environment) ProviderTypes() map[string]struct{} {
	types := make(map[string]struct{}, len(e.Providers))
	for _, name := range e.Providers {
		types[name] = struct{}{}
	}
	return types
}

// ModuleDeclaration is the raw, untyped form of a module as read from its
// declaration file. The declared type's parse handler turns it into a
// typed module.
type ModuleDeclaration struct {
	Name        string
	Type        string
	Description string
	// Path is the declaration file itself; Dir is the directory that
	// contains it, which becomes the module's filesystem path.
	Path string
	Dir  string
	// Config is the body of the declaration's config block, left undecoded
	// for the parse handler of the declared type. Nil when the block is
	// absent.
	Config   hcl.Body
	Services []*ServiceDeclaration
}

// ServiceDeclaration is one service block inside a module declaration. The
// Spec fragment is carried verbatim into the service index.
type ServiceDeclaration struct {
	Name string
	Spec map[string]cty.Value
}
