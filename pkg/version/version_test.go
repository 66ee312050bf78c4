package version

import (
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GitCommit == "" || info.BuildDate == "" {
		t.Error("commit and build date must carry their defaults when not injected")
	}
	if info.GoVersion == "" || info.Platform == "" {
		t.Error("GoVersion and Platform must come from the runtime")
	}
	// the default "unknown" BuildDate is not a timestamp
	if !info.BuildTime.IsZero() {
		t.Errorf("BuildTime should be zero for unparseable BuildDate, got %v", info.BuildTime)
	}
}

func TestGetBuildInfoParsesInjectedDate(t *testing.T) {
	originalBuildDate := BuildDate
	defer func() { BuildDate = originalBuildDate }()

	BuildDate = "2026-08-25T12:00:00Z"
	info := GetBuildInfo()

	want, _ := time.Parse(time.RFC3339, BuildDate)
	if !info.BuildTime.Equal(want) {
		t.Errorf("BuildTime = %v, want %v", info.BuildTime, want)
	}
}
