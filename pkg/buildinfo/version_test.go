package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		name        string
		version     string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "go install",
			version:     "dev",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}, Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}},
			wantVersion: "v0.3.0",
			wantCommit:  "abc123",
		},
		{
			name:        "local build",
			version:     "dev",
			info:        debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVersion: "dev",
			wantCommit:  "none",
		},
		{
			name:        "ldflags win",
			version:     "v1.0.0",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}},
			wantVersion: "v1.0.0",
			wantCommit:  "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, "none", "unknown"
			fill(&tt.info)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version: ") || !strings.HasSuffix(got, "\n") {
		t.Errorf("Template() = %q", got)
	}
}
