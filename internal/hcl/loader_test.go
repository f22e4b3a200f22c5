package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/akovalev/berth/internal/apperr"
	"github.com/akovalev/berth/internal/config"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.ProjectFileName, `
project "demo" {
  api_version         = "1.0"
  default_environment = "dev"

  environment "dev" {
    providers = {
      containers = "container"
      functions  = "generic-function"
    }

    variables {
      region = "eu-west-1"
    }
  }

  environment "prod" {
    providers = {
      containers = "container"
    }
  }
}
`)

	project, err := NewLoader().LoadProject(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "demo", project.Name)
	assert.Equal(t, "1.0", project.APIVersion)
	assert.Equal(t, "dev", project.DefaultEnvironment)
	require.Len(t, project.Environments, 2)

	dev := project.Environments["dev"]
	require.NotNil(t, dev)
	assert.Equal(t, "container", dev.Providers["containers"])
	assert.Equal(t, "generic-function", dev.Providers["functions"])
	assert.Equal(t, cty.StringVal("eu-west-1"), dev.Variables["region"])

	prod := project.Environments["prod"]
	require.NotNil(t, prod)
	assert.Nil(t, prod.Variables)
}

func TestLoadProjectErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{
			name: "unsupported api version",
			body: `
project "demo" {
  api_version = "2.0"
}
`,
		},
		{
			name: "malformed api version",
			body: `
project "demo" {
  api_version = "not-a-version"
}
`,
		},
		{
			name: "invalid environment name",
			body: `
project "demo" {
  api_version = "1.0"
  environment "Prod" {}
}
`,
		},
		{
			name: "duplicate environment",
			body: `
project "demo" {
  api_version = "1.0"
  environment "dev" {}
  environment "dev" {}
}
`,
		},
		{
			name: "invalid provider identifier",
			body: `
project "demo" {
  api_version = "1.0"
  environment "dev" {
    providers = { c = "Not Valid" }
  }
}
`,
		},
		{
			name: "unknown default environment",
			body: `
project "demo" {
  api_version         = "1.0"
  default_environment = "staging"
  environment "dev" {}
}
`,
		},
		{
			name: "syntax error",
			body: `project "demo" {`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, config.ProjectFileName, tc.body)

			_, err := NewLoader().LoadProject(context.Background(), root)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
		})
	}
}

func TestLoadProjectMissingFile(t *testing.T) {
	_, err := NewLoader().LoadProject(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
}

func TestLoadModule(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, filepath.Join("services", "api", config.ModuleFileName), `
module "api" {
  type        = "container"
  description = "HTTP API server"

  config {
    image      = "demo/api"
    dockerfile = "Dockerfile.api"
  }

  service "api" {
    port     = 8080
    replicas = 2
  }

  service "api-worker" {
    port = 8081
  }
}
`)

	decl, err := NewLoader().LoadModule(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "api", decl.Name)
	assert.Equal(t, "container", decl.Type)
	assert.Equal(t, "HTTP API server", decl.Description)
	assert.Equal(t, path, decl.Path)
	assert.Equal(t, filepath.Dir(path), decl.Dir)
	require.NotNil(t, decl.Config)

	require.Len(t, decl.Services, 2)
	assert.Equal(t, "api", decl.Services[0].Name)
	assert.True(t, cty.NumberIntVal(8080).RawEquals(decl.Services[0].Spec["port"]))
	assert.True(t, cty.NumberIntVal(2).RawEquals(decl.Services[0].Spec["replicas"]))
	assert.Equal(t, "api-worker", decl.Services[1].Name)
}

func TestLoadModuleErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{
			name: "missing type",
			body: `
module "api" {}
`,
		},
		{
			name: "invalid module name",
			body: `
module "My API" {
  type = "container"
}
`,
		},
		{
			name: "invalid service name",
			body: `
module "api" {
  type = "container"
  service "API" {}
}
`,
		},
		{
			name: "service declared twice",
			body: `
module "api" {
  type = "container"
  service "web" {}
  service "web" {}
}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := writeFile(t, root, config.ModuleFileName, tc.body)

			_, err := NewLoader().LoadModule(context.Background(), path)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
		})
	}
}
