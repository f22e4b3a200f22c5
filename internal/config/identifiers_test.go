package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIdentifier(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "single letter", input: "a", valid: true},
		{name: "plain word", input: "container", valid: true},
		{name: "hyphenated", input: "generic-function", valid: true},
		{name: "digits after letter", input: "env2", valid: true},
		{name: "digit segments", input: "a1-b2-c3", valid: true},
		{name: "empty", input: "", valid: false},
		{name: "leading digit", input: "1abc", valid: false},
		{name: "leading hyphen", input: "-abc", valid: false},
		{name: "trailing hyphen", input: "abc-", valid: false},
		{name: "double hyphen", input: "a--b", valid: false},
		{name: "uppercase", input: "Container", valid: false},
		{name: "underscore", input: "my_module", valid: false},
		{name: "dot", input: "prod.team", valid: false},
		{name: "space", input: "my module", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsIdentifier(tc.input))
		})
	}
}

func TestProviderTypes(t *testing.T) {
	env := &Environment{
		Name: "dev",
		Providers: map[string]string{
			"container": "container",
			"functions": "generic-function",
			"fallback":  "container",
		},
	}

	types := env.ProviderTypes()
	assert.Len(t, types, 2)
	assert.Contains(t, types, "container")
	assert.Contains(t, types, "generic-function")
}
