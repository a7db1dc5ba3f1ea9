// Package version holds build metadata stamped in via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag, e.g. "v0.3.0".
	GitRelease = "dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of the build.
	GitCommitDate = "unknown"
)

// GoInfo describes the toolchain and platform the binary was built with.
var GoInfo = runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
