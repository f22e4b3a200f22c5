// Package schema contains the raw HCL block structures for berth
// configuration files. These structs mirror the on-disk syntax exactly and
// are translated into the format-agnostic model by the hcl package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Project File Structures ---

// ProjectFile represents the top-level structure of a project.hcl file.
type ProjectFile struct {
	Project *Project `hcl:"project,block"`
}

// Project represents the single `project` block of a project file.
type Project struct {
	Name               string         `hcl:"name,label"`
	APIVersion         string         `hcl:"api_version"`
	DefaultEnvironment string         `hcl:"default_environment,optional"`
	Environments       []*Environment `hcl:"environment,block"`
}

// Environment represents one `environment` block within a project.
type Environment struct {
	Name      string            `hcl:"name,label"`
	Providers map[string]string `hcl:"providers,optional"`
	Variables *AttrsBlock       `hcl:"variables,block"`
}

// --- Module Declaration Structures ---

// ModuleFile represents the top-level structure of a berth.hcl file.
type ModuleFile struct {
	Module *Module `hcl:"module,block"`
}

// Module represents the single `module` block of a declaration file.
type Module struct {
	Name        string      `hcl:"name,label"`
	Type        string      `hcl:"type"`
	Description string      `hcl:"description,optional"`
	Config      *AttrsBlock `hcl:"config,block"`
	Services    []*Service  `hcl:"service,block"`
}

// Service represents a `service` block within a module declaration. Its
// body is carried verbatim; the core never interprets service attributes.
type Service struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// AttrsBlock captures an attribute-only block body for later decoding.
type AttrsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
