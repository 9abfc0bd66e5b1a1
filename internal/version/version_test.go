package version

import (
	"strings"
	"testing"
)

func TestPlain_StripsColour(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "\x1b[31m1\x1b[0m.2.3"
	if got := Plain(); got != "1.2.3" {
		t.Fatalf("Plain() = %q", got)
	}
}

func TestPlain_DefaultIsDevBuild(t *testing.T) {
	got := Plain()
	if strings.ContainsRune(got, '\x1b') {
		t.Fatalf("escape left in %q", got)
	}
	if !strings.HasSuffix(got, "-dev") || strings.Count(got, ".") != 2 {
		t.Fatalf("unexpected default version %q", got)
	}
}

func TestOverrides(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("overrides not applied: %q %q", GitCommit, BuildDate)
	}
}
