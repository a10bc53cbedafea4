package probe

import (
	"context"
	"testing"
	"time"

	"tview/internal/config"
)

func TestSSHKeyNamespacing(t *testing.T) {
	if got := SSHKey("dev"); got != "ssh/dev" {
		t.Errorf("SSHKey = %q", got)
	}
	if got := GitKey("head"); got != "git/head" {
		t.Errorf("GitKey = %q", got)
	}
}

func TestForConfigSkipsLocalEnvironments(t *testing.T) {
	cfg := config.Default()
	cfg.Environments = map[string]config.EnvConfig{
		"local": {Services: []string{"app"}},
		"dev":   {Host: "dev.example.com", User: "deploy", Port: 22},
		"prod":  {Host: "prod.example.com", User: "deploy", Port: 2222},
	}
	probes := ForConfig(cfg, time.Minute)

	keys := map[string]bool{}
	for _, p := range probes {
		keys[p.Key] = true
	}
	if keys["ssh/local"] {
		t.Error("local environment got an ssh probe")
	}
	if !keys["ssh/dev"] || !keys["ssh/prod"] {
		t.Errorf("missing remote probes, got %v", keys)
	}
}

func TestForConfigAddsGitProbesWithSrc(t *testing.T) {
	t.Setenv(config.EnvSrc, t.TempDir())
	cfg := config.Default()
	probes := ForConfig(cfg, time.Minute)

	keys := map[string]bool{}
	for _, p := range probes {
		keys[p.Key] = true
	}
	for _, want := range []string{"git/branch", "git/head", "git/status"} {
		if !keys[want] {
			t.Errorf("missing probe %s", want)
		}
	}
}

func TestCheckSSHUnreachableIsBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns ssh")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	// TEST-NET-1 address; nothing answers, so the connect timeout governs.
	got := CheckSSH(ctx, "nobody@192.0.2.1", 22)
	if got != Unreachable {
		t.Errorf("CheckSSH = %q, want %q", got, Unreachable)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("probe took %v, connect timeout not honored", elapsed)
	}
}
