// Package version carries build metadata stamped in with -ldflags.
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for the version command and /api/config.
func String() string {
	return fmt.Sprintf("pitch-report %s (%s, built %s)", Version, GitSHA, BuildTime)
}
