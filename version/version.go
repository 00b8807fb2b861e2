package version

import (
	"strings"
)

// Overridden at release build time via -ldflags.
var (
	Version = "0.1.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func init() {
	if !strings.HasPrefix(Version, "v") {
		Version = "v" + Version
	}
}
