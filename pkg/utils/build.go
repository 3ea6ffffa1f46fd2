// Build information injected with -ldflags, e.g.
//   go build -ldflags "-X github.com/nobletooth/fll/pkg/utils.Version=v0.3.0 -X ...utils.TestMode=true" ./cmd/fll
// CAUTION: This file shouldn't be removed or else the linker flags would have nothing to set.

package utils

import (
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/mod/semver"
)

const unknownBuildInfo = "unknown"

var (
	TestMode   string // Should be "true" for binaries built for tests; invariant violations panic there.
	IsTestMode bool
	Version    string
	Commit     string
	BuildTime  string
	StartTime  time.Time
)

func init() {
	StartTime = time.Now()

	// If build info is not set, make that clear.
	if Version == "" {
		Version = unknownBuildInfo
	}
	if Commit == "" {
		Commit = unknownBuildInfo
	}
	if BuildTime == "" {
		BuildTime = unknownBuildInfo
	}
	if len(TestMode) > 0 {
		if isTestMode, err := strconv.ParseBool(TestMode); err == nil {
			IsTestMode = isTestMode
		} else {
			slog.Warn("Failed to parse TestMode build flag, defaulting to false", "error", err)
		}
	}
}

// HasReleaseVersion is true when the binary was stamped with a valid semantic version.
func HasReleaseVersion() bool {
	return semver.IsValid(Version)
}

// BuildInfo returns the build information as slog attributes.
func BuildInfo() []any {
	return []any{"version", Version, "commit", Commit, "build", BuildTime, "uptime", time.Since(StartTime).String()}
}
