package modes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tview/internal/cache"
	"tview/internal/config"
	"tview/internal/nav"
	"tview/internal/org"
	"tview/internal/probe"
	"tview/internal/rcm"
	"tview/internal/registry"
)

func testDeps(t *testing.T) (Deps, *registry.Registry) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Environments = map[string]config.EnvConfig{
		"local": {Services: []string{"app", "worker"}},
		"dev": {
			Host: "dev.example.com", User: "deploy", Port: 22,
			Services: []string{"nginx"},
			Commands: []config.RemoteCommand{
				{ID: "deploy", Label: "deploy app", Command: "bin/deploy"},
				{ID: "logs", Label: "tail logs", Command: "journalctl -n 50"},
			},
		},
		"prod": {
			Host: "prod.example.com", User: "deploy",
			Commands: []config.RemoteCommand{
				{ID: "deploy", Label: "deploy app", Command: "bin/deploy"},
			},
		},
	}

	store, err := cache.NewStore(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	d := Deps{
		Config:     func() *config.Config { return cfg },
		ConfigPath: filepath.Join(dir, "tview.toml"),
		DataDir:    dir,
		Cache:      store,
		Exec:       rcm.NewTable(),
		Orgs:       org.NewStore(filepath.Join(dir, "orgs"), filepath.Join(dir, "org")),
	}
	d.Facts = NewFacts(d.ConfigPath, dir)

	reg := registry.New()
	Register(reg, d)
	reg.Seal()
	return d, reg
}

func render(t *testing.T, reg *registry.Registry, ctx registry.Context) string {
	t.Helper()
	entry, ok := reg.Lookup(ctx.Mode, ctx.Env)
	if !ok {
		t.Fatalf("no entry for %s/%s", ctx.Mode, ctx.Env)
	}
	if ctx.Width == 0 {
		ctx.Width = 80
	}
	return entry.Render(ctx)
}

func TestEveryModeRegistered(t *testing.T) {
	_, reg := testDeps(t)
	for _, m := range nav.Modes {
		for _, e := range nav.Environments {
			if _, ok := reg.Lookup(m, e); !ok {
				t.Errorf("no entry for %s/%s", m, e)
			}
		}
	}
}

func TestConfigModeNoFile(t *testing.T) {
	_, reg := testDeps(t)
	out := render(t, reg, registry.Context{Mode: nav.ModeConfig})
	if !strings.Contains(out, "no configuration file") {
		t.Errorf("out = %q", out)
	}
}

func TestConfigModeSectionsAndDiff(t *testing.T) {
	d, reg := testDeps(t)
	content := "org = \"acme\"\n\n[ui]\nrefresh_every = 5\n"
	if err := os.WriteFile(d.ConfigPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Facts.Refresh()

	out := render(t, reg, registry.Context{Mode: nav.ModeConfig})
	if !strings.Contains(out, "ui") {
		t.Errorf("sections missing: %q", out)
	}

	detail := render(t, reg, registry.Context{Mode: nav.ModeConfig, Drill: nav.DrillDetail})
	if !strings.Contains(detail, "config vs defaults") {
		t.Errorf("diff missing: %q", detail)
	}
}

func TestConfigActions(t *testing.T) {
	d, _ := testDeps(t)
	if err := os.WriteFile(d.ConfigPath, []byte("org = \"acme\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var edited, shown string
	d.Edit = func(path string) error {
		edited = path
		return nil
	}
	d.ShowText = func(title, body string) error {
		shown = body
		return nil
	}
	reg := registry.New()
	Register(reg, d)
	reg.Seal()

	actions := reg.ActionsFor(nav.ModeConfig, nav.EnvTetra, 0)
	if len(actions) != 2 || actions[0].ID != "edit" {
		t.Fatalf("actions = %+v", actions)
	}

	run := reg.RunFor(nav.ModeConfig, nav.EnvTetra)
	if err := run(nav.EnvTetra, 0, "edit"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited != d.ConfigPath {
		t.Errorf("edited = %q", edited)
	}
	if err := run(nav.EnvTetra, 0, "view"); err != nil {
		t.Fatalf("view: %v", err)
	}
	if !strings.Contains(shown, "acme") {
		t.Errorf("shown = %q", shown)
	}
}

func TestConfigModeRawFallback(t *testing.T) {
	d, reg := testDeps(t)
	broken := "[ui\nrefresh_every = 5\n[environments.dev]\nhost = \"dev\"\n"
	if err := os.WriteFile(d.ConfigPath, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Facts.Refresh()
	out := render(t, reg, registry.Context{Mode: nav.ModeConfig})
	if !strings.Contains(out, "syntax errors") {
		t.Errorf("raw view not flagged: %q", out)
	}
}

func TestConfigRenderServesCachedFacts(t *testing.T) {
	d, reg := testDeps(t)
	if err := os.WriteFile(d.ConfigPath, []byte("[ui]\nrefresh_every = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Facts.Refresh()
	if out := render(t, reg, registry.Context{Mode: nav.ModeConfig}); !strings.Contains(out, "ui") {
		t.Fatalf("initial render: %q", out)
	}

	next := "[ui]\nrefresh_every = 5\n\n[environments.dev]\nhost = \"dev\"\n"
	if err := os.WriteFile(d.ConfigPath, []byte(next), 0o644); err != nil {
		t.Fatal(err)
	}
	// Disk changes stay invisible until the next throttled refresh.
	if out := render(t, reg, registry.Context{Mode: nav.ModeConfig}); strings.Contains(out, "environments") {
		t.Errorf("render read the disk instead of the cache: %q", out)
	}

	d.Facts.Refresh()
	if out := render(t, reg, registry.Context{Mode: nav.ModeConfig}); !strings.Contains(out, "environments") {
		t.Errorf("refresh did not surface the new section: %q", out)
	}
}

func TestKeysModeListsAndDetails(t *testing.T) {
	d, reg := testDeps(t)
	keysDir := filepath.Join(d.DataDir, "keys")
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		t.Fatal(err)
	}
	line := "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAITESTKEY deploy@dev"
	if err := os.WriteFile(filepath.Join(keysDir, "deploy.pub"), []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d.Facts.Refresh()

	out := render(t, reg, registry.Context{Mode: nav.ModeKeys})
	if !strings.Contains(out, "deploy") || !strings.Contains(out, "ssh-ed25519") {
		t.Errorf("key list: %q", out)
	}

	detail := render(t, reg, registry.Context{Mode: nav.ModeKeys, Drill: nav.DrillDetail})
	if !strings.Contains(detail, line) {
		t.Errorf("key detail missing full line: %q", detail)
	}
	if !strings.Contains(detail, "SHA256:") {
		t.Errorf("key detail missing fingerprint: %q", detail)
	}
}

func TestFingerprintMalformedKey(t *testing.T) {
	if fp := fingerprint("ssh-rsa"); fp != "" {
		t.Errorf("fingerprint of short line = %q", fp)
	}
	if fp := fingerprint("ssh-rsa not!base64 c"); fp != "" {
		t.Errorf("fingerprint of bad blob = %q", fp)
	}
}

func TestServicesModeRendersReachability(t *testing.T) {
	d, reg := testDeps(t)

	out := render(t, reg, registry.Context{Mode: nav.ModeServices, Env: nav.EnvDev})
	if !strings.Contains(out, cache.Checking) {
		t.Errorf("missing checking sentinel: %q", out)
	}

	if err := d.Cache.Put(probe.SSHKey("dev"), probe.Connected, time.Minute); err != nil {
		t.Fatal(err)
	}
	out = render(t, reg, registry.Context{Mode: nav.ModeServices, Env: nav.EnvDev})
	if !strings.Contains(out, "reachable") {
		t.Errorf("missing reachability: %q", out)
	}
	if !strings.Contains(out, "nginx") {
		t.Errorf("missing service: %q", out)
	}
}

func TestServicesModeLocalHasNoReachability(t *testing.T) {
	_, reg := testDeps(t)
	out := render(t, reg, registry.Context{Mode: nav.ModeServices, Env: nav.EnvLocal})
	if strings.Contains(out, "reachable") {
		t.Errorf("local env rendered reachability: %q", out)
	}
	if !strings.Contains(out, "app") || !strings.Contains(out, "worker") {
		t.Errorf("missing services: %q", out)
	}
}

func TestServicesItemsAndActions(t *testing.T) {
	_, reg := testDeps(t)
	if n := reg.ItemCount(nav.ModeServices, nav.EnvLocal); n != 2 {
		t.Errorf("ItemCount = %d, want 2", n)
	}
	actions := reg.ActionsFor(nav.ModeServices, nav.EnvLocal, 0)
	if len(actions) != 3 {
		t.Fatalf("actions = %+v", actions)
	}
	// Unconfigured environments offer no actions.
	if got := reg.ActionsFor(nav.ModeServices, nav.EnvQA, 0); got != nil {
		t.Errorf("qa actions = %+v", got)
	}
}

func TestSSHWrap(t *testing.T) {
	local := config.EnvConfig{}
	if got := sshWrap(local, "echo hi"); got != "echo hi" {
		t.Errorf("local wrap = %q", got)
	}

	remote := config.EnvConfig{Host: "dev.example.com", User: "deploy", Port: 22}
	got := sshWrap(remote, "systemctl status nginx")
	if !strings.Contains(got, "deploy@dev.example.com") || !strings.Contains(got, "'systemctl status nginx'") {
		t.Errorf("remote wrap = %q", got)
	}
	if strings.Contains(got, "-p ") {
		t.Errorf("default port leaked into command: %q", got)
	}

	remote.Port = 2222
	if got := sshWrap(remote, "true"); !strings.Contains(got, "-p 2222") {
		t.Errorf("custom port missing: %q", got)
	}

	quoted := sshWrap(remote, "echo 'it works'")
	if !strings.Contains(quoted, `'\''`) {
		t.Errorf("single quotes not escaped: %q", quoted)
	}
}

func TestDeployProdRequiresConfirmation(t *testing.T) {
	d, _ := testDeps(t)
	asked := false
	d.Confirm = func(title, body string) (bool, error) {
		asked = true
		return false, nil
	}
	reg := registry.New()
	Register(reg, d)
	reg.Seal()

	run := reg.RunFor(nav.ModeDeploy, nav.EnvProd)
	if err := run(nav.EnvProd, 0, "deploy"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !asked {
		t.Error("prod deploy skipped confirmation")
	}
	if _, ok := d.Exec.Get("deploy/prod"); ok {
		t.Error("declined deploy still executed")
	}
}

func TestDeployRollbackAction(t *testing.T) {
	d, _ := testDeps(t)
	cfg := d.Config()
	env := cfg.Environments["dev"]
	env.Commands = append(env.Commands, config.RemoteCommand{ID: "rollback", Label: "roll back", Command: "bin/rollback"})
	cfg.Environments["dev"] = env

	reg := registry.New()
	Register(reg, d)
	reg.Seal()

	actions := reg.ActionsFor(nav.ModeDeploy, nav.EnvDev, 0)
	if len(actions) != 2 || actions[1].ID != "rollback" {
		t.Fatalf("actions = %+v", actions)
	}
}

func TestDeployWithoutCommand(t *testing.T) {
	_, reg := testDeps(t)
	run := reg.RunFor(nav.ModeDeploy, nav.EnvLocal)
	if err := run(nav.EnvLocal, 0, "deploy"); err == nil {
		t.Error("deploy without configured command should error")
	}
	if got := reg.ActionsFor(nav.ModeDeploy, nav.EnvLocal, 0); got != nil {
		t.Errorf("actions without command = %+v", got)
	}
}

func TestDeployRenderShowsGitFacts(t *testing.T) {
	d, reg := testDeps(t)
	if err := d.Cache.Put(probe.GitKey("branch"), "main", time.Minute); err != nil {
		t.Fatal(err)
	}
	out := render(t, reg, registry.Context{Mode: nav.ModeDeploy, Env: nav.EnvDev})
	if !strings.Contains(out, "main") {
		t.Errorf("branch fact missing: %q", out)
	}
	if !strings.Contains(out, "bin/deploy") {
		t.Errorf("deploy command missing: %q", out)
	}
}

func TestOrgModeListAndActive(t *testing.T) {
	d, reg := testDeps(t)
	if err := d.Orgs.Save(org.Org{Name: "acme", Provider: "do", Domains: []string{"acme.test"}}); err != nil {
		t.Fatal(err)
	}
	if err := d.Orgs.Save(org.Org{Name: "beta"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Orgs.SetActive("acme"); err != nil {
		t.Fatal(err)
	}

	out := render(t, reg, registry.Context{Mode: nav.ModeOrg})
	if !strings.Contains(out, "acme") || !strings.Contains(out, "active") {
		t.Errorf("org list: %q", out)
	}

	detail := render(t, reg, registry.Context{Mode: nav.ModeOrg, Drill: nav.DrillDetail})
	if !strings.Contains(detail, "acme.test") {
		t.Errorf("org detail: %q", detail)
	}
}

func TestOrgDrillInvokesPicker(t *testing.T) {
	d, _ := testDeps(t)
	picked := false
	d.PickOrg = func() error {
		picked = true
		return nil
	}
	reg := registry.New()
	Register(reg, d)
	reg.Seal()

	drill := reg.DrillFor(nav.ModeOrg, nav.EnvTetra)
	if err := drill(nav.EnvTetra, 0); err != nil {
		t.Fatalf("drill: %v", err)
	}
	if !picked {
		t.Error("drill did not invoke the picker")
	}
}

func TestRemoteModeExecutesLocalCommand(t *testing.T) {
	d, _ := testDeps(t)
	cfg := d.Config()
	cfg.Environments["local"] = config.EnvConfig{
		Commands: []config.RemoteCommand{{ID: "hello", Label: "say hello", Command: "echo hello"}},
	}
	reg := registry.New()
	Register(reg, d)
	reg.Seal()

	run := reg.RunFor(nav.ModeRemote, nav.EnvLocal)
	if err := run(nav.EnvLocal, 0, "run"); err != nil {
		t.Fatalf("run: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if e, ok := d.Exec.Get("remote/local/hello"); ok && e.State != rcm.Executing {
			if e.State != rcm.Success || e.Result != "hello" {
				t.Fatalf("execution = %+v", e)
			}
			out := render(t, reg, registry.Context{Mode: nav.ModeRemote, Env: nav.EnvLocal, Drill: nav.DrillDetail})
			if !strings.Contains(out, "hello") {
				t.Errorf("output not rendered: %q", out)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("command never settled")
}

func TestRemoteModeUnconfigured(t *testing.T) {
	_, reg := testDeps(t)
	out := render(t, reg, registry.Context{Mode: nav.ModeRemote, Env: nav.EnvQA})
	if !strings.Contains(out, "not configured") {
		t.Errorf("out = %q", out)
	}
	run := reg.RunFor(nav.ModeRemote, nav.EnvLocal)
	if err := run(nav.EnvLocal, 0, "run"); err == nil {
		t.Error("running with no commands should error")
	}
}
