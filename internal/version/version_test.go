package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestPretty(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		version string
		want    string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"nightly", "nightly"},
		{"", "dev"},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := Pretty(false); got != tt.want {
			t.Errorf("Pretty(false) with %q = %q, want %q", tt.version, got, tt.want)
		}
	}

	Version = "1.2.3"
	if got := Pretty(true); !strings.Contains(got, "\x1b[") {
		t.Errorf("Pretty(true) = %q, want escape codes", got)
	}
}
