package config

import "regexp"

// identifierRe is the grammar shared by plugin, module, service, and
// environment names: lowercase alphanumeric segments joined by single
// hyphens, starting with a letter.
var identifierRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// IsIdentifier reports whether name conforms to the identifier grammar.
func IsIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}
