// Package hcl implements the config.Loader interface for HCL configuration
// files. It parses project.hcl and berth.hcl documents into the raw schema
// structs and translates them into the format-agnostic config model.
package hcl

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
)

// apiConstraint is the range of project api_version values this build of
// the tool understands.
const apiConstraint = "^1"

// Loader reads HCL configuration documents from disk.
type Loader struct {
	parser        *hclparse.Parser
	apiConstraint *semver.Constraints
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a Loader with a fresh HCL parser.
func NewLoader() *Loader {
	c, err := semver.NewConstraint(apiConstraint)
	if err != nil {
		panic(fmt.Sprintf("hcl: invalid api constraint %q: %v", apiConstraint, err))
	}
	return &Loader{
		parser:        hclparse.NewParser(),
		apiConstraint: c,
	}
}

// parseFile parses one HCL file, mapping diagnostics onto a configuration
// error that names the file.
func (l *Loader) parseFile(path string) (*hcl.File, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, apperr.Configuration(
			fmt.Sprintf("failed to parse %s", path),
			map[string]any{"path": path, "diagnostics": diags.Error()},
		)
	}
	return file, nil
}

// attrValues evaluates an attribute-only body into a map of static values.
// Expressions in these bodies may not reference anything; they are plain
// literals carried through to consumers.
func attrValues(body hcl.Body, path string) (map[string]cty.Value, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, apperr.Configuration(
			fmt.Sprintf("failed to read attributes in %s", path),
			map[string]any{"path": path, "diagnostics": diags.Error()},
		)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, apperr.Configuration(
				fmt.Sprintf("failed to evaluate attribute '%s' in %s", name, path),
				map[string]any{"path": path, "attribute": name, "diagnostics": diags.Error()},
			)
		}
		values[name] = val
	}
	return values, nil
}
