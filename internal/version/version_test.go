package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate are optional.
	_ = GitCommit
	_ = BuildDate
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	})

	// Simulates -ldflags "-X declattr/internal/version.Version=1.2.3".
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2024-01-15T10:30:00Z")
	}
}

func TestColored(t *testing.T) {
	tests := []struct {
		in     string
		plain  string
		styled bool
	}{
		{"0.1.0-dev", "0.1.0-dev", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123", true},
		{"dev", "dev", false},
		{"1.2", "1.2", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Colored(tt.in)
			if strings.Contains(got, "\x1b[") != tt.styled {
				t.Fatalf("Colored(%q) = %q, styled want %v", tt.in, got, tt.styled)
			}
			if stripANSI(got) != tt.plain {
				t.Fatalf("Colored(%q) text = %q", tt.in, stripANSI(got))
			}
		})
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
