// Package version reports the assetid release and build fingerprint.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Overridden at build time with -ldflags "-X .../internal/version.GitCommit=..."
var (
	Version   = "0.1.0"
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns the bare semantic version.
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return fmt.Sprintf("assetid %s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID returns a short fingerprint of the running binary: Go version,
// module version and VCS settings.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID(debug.ReadBuildInfo())
	})
	return buildID
}

func computeBuildID(info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return Version + "-" + GitCommit
	}

	d := xxhash.New()
	_, _ = d.WriteString(info.GoVersion)
	_, _ = d.WriteString(info.Main.Path)
	_, _ = d.WriteString(info.Main.Version)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			_, _ = d.WriteString(s.Key)
			_, _ = d.WriteString(s.Value)
		}
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
