package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFileDegradesToDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if cfg.Cache.PollSeconds != 30 || cfg.Cache.TTLSeconds != 60 {
		t.Errorf("defaults not applied: %+v", cfg.Cache)
	}
}

func TestLoadBackfillsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tview.toml", `
[environments.dev]
host = "dev.example.com"
user = "tetra"
services = ["nginx", "tetra-web"]
`)
	cfg, found, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("found = false")
	}
	if cfg.UI.RefreshEvery != 10 {
		t.Errorf("RefreshEvery = %d, want backfilled 10", cfg.UI.RefreshEvery)
	}
	env, ok := cfg.Env("dev")
	if !ok {
		t.Fatal("dev environment missing")
	}
	if env.Port != 22 {
		t.Errorf("Port = %d, want backfilled 22", env.Port)
	}
	if got := env.SSHTarget(); got != "tetra@dev.example.com" {
		t.Errorf("SSHTarget = %q", got)
	}
}

func TestLoadMalformedReturnsError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tview.toml", "[environments.dev\nhost=")
	_, found, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !found {
		t.Error("found should be true: the file exists")
	}
}

func TestDirRequiresEnvVar(t *testing.T) {
	t.Setenv(EnvDir, "")
	if _, err := Dir(); err == nil {
		t.Error("Dir() with unset TETRA_DIR should fail")
	}

	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if got != dir {
		t.Errorf("Dir = %q, want %q", got, dir)
	}
}

func TestPrintRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Environments = map[string]EnvConfig{
		"staging": {
			Host:     "staging.example.com",
			User:     "tetra",
			Port:     22,
			Services: []string{"nginx"},
			Commands: []RemoteCommand{{ID: "uptime", Label: "Uptime", Command: "uptime"}},
		},
	}

	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatalf("Print: %v", err)
	}

	path := writeFile(t, t.TempDir(), "tview.toml", buf.String())
	got, _, err := Load(path)
	if err != nil {
		t.Fatalf("reloading printed config: %v", err)
	}
	env, ok := got.Env("staging")
	if !ok {
		t.Fatal("staging environment lost in round trip")
	}
	if env.Host != "staging.example.com" || len(env.Commands) != 1 {
		t.Errorf("round trip mangled env: %+v", env)
	}
}

func TestOpenFileSectionView(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tview.toml", `
org = "acme"

[ui]
refresh_every = 5

[environments.dev]
host = "dev.example.com"
`)
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if f.Raw {
		t.Error("valid TOML should not use the raw scanner")
	}
	if got := f.Get("ui", "refresh_every"); got != "5" {
		t.Errorf("Get(ui, refresh_every) = %q, want 5", got)
	}
	if got := f.Get("environments.dev", "host"); got != "dev.example.com" {
		t.Errorf("Get(environments.dev, host) = %q", got)
	}
	if got := f.Get("", "org"); got != "acme" {
		t.Errorf("Get top-level org = %q", got)
	}
}

func TestOpenFileRawFallback(t *testing.T) {
	// Broken TOML: unclosed table header further down. The scanner should
	// still recover the readable lines.
	path := writeFile(t, t.TempDir(), "tview.toml", `
[ui]
refresh_every = 5
[environments.dev
host = "dev.example.com"
`)
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if !f.Raw {
		t.Fatal("broken TOML should fall back to the raw scanner")
	}
	if got := f.Get("ui", "refresh_every"); got != "5" {
		t.Errorf("raw Get(ui, refresh_every) = %q, want 5", got)
	}
	names := strings.Join(f.SectionNames(), ",")
	if !strings.Contains(names, "ui") {
		t.Errorf("section names = %q, want ui present", names)
	}
}

func TestOpenFileMissing(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if len(f.Sections) != 0 {
		t.Errorf("missing file should yield empty view, got %d sections", len(f.Sections))
	}
}
