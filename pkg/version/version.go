// Package version exposes the build metadata served on /version and by
// policyctl. Release builds inject the variables below through
// -ldflags "-X github.com/telekom/k8s-podsec-admission/pkg/version.Version=...".
package version

import (
	"runtime"
	"time"
)

var (
	// Version is the semantic version, injected at build time.
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time.
	BuildDate = "unknown"
	// GoVersion is the Go compiler version.
	GoVersion = runtime.Version()
	// Platform is the OS/Arch pair.
	Platform = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo is the metadata record handed to the version endpoint and the
// policyctl version command.
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"gitCommit"`
	BuildDate string    `json:"buildDate"`
	GoVersion string    `json:"goVersion"`
	Platform  string    `json:"platform"`
	BuildTime time.Time `json:"buildTime,omitempty"`
}

// GetBuildInfo assembles the current build metadata. BuildTime is filled in
// only when BuildDate parses as RFC3339.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}

	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		info.BuildTime = t
	}

	return info
}
