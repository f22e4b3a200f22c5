// Package version exposes build metadata, populated at link time via
// -ldflags.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a human-readable version line.
func String() string {
	return fmt.Sprintf("berth %s (commit %s, built %s)", Version, Commit, Date)
}
