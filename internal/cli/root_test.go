package cli

import (
	"bytes"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "tview dev") {
		t.Errorf("out = %q", out)
	}
}

func TestConfigInitPrintsDefaults(t *testing.T) {
	out, err := runCmd(t, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	for _, want := range []string{"[ui]", "[cache]", "poll_seconds = 30", "ttl_seconds = 60"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowRequiresDataDir(t *testing.T) {
	t.Setenv("TETRA_DIR", "")
	_, err := runCmd(t, "config", "show")
	if err == nil {
		t.Fatal("config show without TETRA_DIR should fail")
	}
}

func TestConfigShowWithDataDir(t *testing.T) {
	t.Setenv("TETRA_DIR", t.TempDir())
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "showing defaults") {
		t.Errorf("out = %q", out)
	}
}
