package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	original := readBuildInfo
	t.Cleanup(func() { readBuildInfo = original })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, info != nil
	}
}

func TestBuildVersion(t *testing.T) {
	tests := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{"release tag", &debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}}, "v0.3.0"},
		{"unavailable", nil, "dev"},
		{"devel", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
		{"empty", &debug.BuildInfo{}, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.info)
			if got := BuildVersion(); got != tt.want {
				t.Errorf("BuildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevision(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "4f2c9a1e7b3d5f60a1b2c3d4e5f6a7b8c9d0e1f2"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if got := Revision(); got != "4f2c9a1e7b3d-dirty" {
		t.Errorf("Revision() = %q", got)
	}
	if got := String(); got != "v0.3.0 (4f2c9a1e7b3d-dirty)" {
		t.Errorf("String() = %q", got)
	}
}

func TestString_NoVCS(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	if got := String(); got != "dev" {
		t.Errorf("String() = %q, want dev", got)
	}
}
