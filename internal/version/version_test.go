// Where: internal/version/version_test.go
// What: Tests for build-info version formatting.
// Why: Keep the version banner stable across build modes.
package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
}

func TestGetVersionWithoutBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil, false)
	if got := GetVersion(); got != "dev" {
		t.Fatalf("GetVersion() = %q, want dev", got)
	}
}

func TestGetVersionShortensRevision(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
	}}, true)
	if got := GetVersion(); got != "0123456 (dirty)" {
		t.Fatalf("GetVersion() = %q", got)
	}
	if got := Banner(); got != "canary 0123456 (dirty)" {
		t.Fatalf("Banner() = %q", got)
	}
}
