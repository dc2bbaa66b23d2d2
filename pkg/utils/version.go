// Package utils holds small helpers shared by the cozeprox commands.
package utils

import (
	"fmt"
	"runtime"
)

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// VersionInfo returns the build metadata as a short multi-line report.
func VersionInfo() string {
	return fmt.Sprintf("Version: %s\nSha: %s\nBuilt at: %s\nGo: %s\n", Version, Sha, Buildtime, runtime.Version())
}

// UserAgent identifies cozeprox to the upstream.
func UserAgent() string {
	return "cozeprox/" + Version
}
