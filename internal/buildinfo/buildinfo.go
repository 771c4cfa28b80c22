// Package buildinfo carries the version/commit/date strings the version
// subcommand prints, set at link time via -ldflags (e.g.
// -X github.com/watchmapper/tilegps/internal/buildinfo.Version=1.2.3).
package buildinfo

import "fmt"

// Version, Commit and Date default to placeholders for a non-release
// build; a release build overrides them with -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Print writes the build info to stdout in the shape the CLI's version
// subcommand expects.
func Print() {
	fmt.Printf("tilegps %s\n", Version)
	fmt.Printf("commit:  %s\n", Commit)
	fmt.Printf("built:   %s\n", Date)
}
