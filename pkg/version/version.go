// Package version holds build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags "-X glidescope/pkg/version.Version=... " and friends;
// the defaults identify a from-source build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("glidescope %s (commit %s, built %s)", Version, Commit, Date)
}
