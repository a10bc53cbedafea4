package repl

import (
	"strings"
	"testing"
)

func testRouter() *Router {
	r := NewRouter()
	r.Register(Module{
		Name:    "services",
		Summary: "service control",
		Handle: func(args string) (string, error) {
			return "services: " + args, nil
		},
	})
	r.Register(Module{
		Name:    "deploy",
		Summary: "deployments",
		Handle: func(args string) (string, error) {
			return "deploy: " + args, nil
		},
	})
	return r
}

func TestSlashCommandRoutesAndSticks(t *testing.T) {
	r := testRouter()
	out, exit, err := r.Eval("/services restart nginx")
	if err != nil || exit {
		t.Fatalf("Eval: out=%q exit=%v err=%v", out, exit, err)
	}
	if out != "services: restart nginx" {
		t.Errorf("out = %q", out)
	}
	if r.Context() != "services" {
		t.Errorf("context = %q, want services", r.Context())
	}
}

func TestBareLineGoesToContext(t *testing.T) {
	r := testRouter()
	r.Eval("/services")
	out, _, err := r.Eval("status nginx")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out != "services: status nginx" {
		t.Errorf("out = %q", out)
	}
}

func TestBareLineWithoutContext(t *testing.T) {
	r := testRouter()
	out, exit, err := r.Eval("status")
	if err != nil || exit {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.Contains(out, "no module selected") {
		t.Errorf("out = %q", out)
	}
}

func TestContextSwitches(t *testing.T) {
	r := testRouter()
	r.Eval("/services")
	r.Eval("/deploy")
	out, _, _ := r.Eval("status")
	if out != "deploy: status" {
		t.Errorf("out = %q, context did not switch", out)
	}
}

func TestUnknownModule(t *testing.T) {
	r := testRouter()
	out, exit, err := r.Eval("/nosuch thing")
	if err != nil || exit {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.Contains(out, `unknown module "nosuch"`) {
		t.Errorf("out = %q", out)
	}
	if r.Context() != "" {
		t.Error("unknown module polluted the context")
	}
}

func TestExit(t *testing.T) {
	for _, line := range []string{"/exit", "/quit", "/q"} {
		r := testRouter()
		_, exit, err := r.Eval(line)
		if err != nil {
			t.Fatalf("Eval(%q): %v", line, err)
		}
		if !exit {
			t.Errorf("Eval(%q) did not exit", line)
		}
	}
}

func TestHelpAndModules(t *testing.T) {
	r := testRouter()
	out, _, _ := r.Eval("/help")
	if !strings.Contains(out, "/modules") {
		t.Errorf("help = %q", out)
	}

	r.Eval("/deploy")
	out, _, _ = r.Eval("/modules")
	if !strings.Contains(out, "* deploy") {
		t.Errorf("modules = %q, context not marked", out)
	}
	if !strings.Contains(out, "services") {
		t.Errorf("modules = %q", out)
	}
}

func TestEmptyLineSummarizesContext(t *testing.T) {
	r := testRouter()
	out, _, _ := r.Eval("")
	if !strings.Contains(out, "no module selected") {
		t.Errorf("out = %q", out)
	}

	r.Eval("/services")
	out, _, _ = r.Eval("   ")
	if !strings.Contains(out, "service control") {
		t.Errorf("out = %q", out)
	}
}

func TestEmptyLineShowsStatus(t *testing.T) {
	r := testRouter()
	r.SetStatus(func() string { return "DEV / SERVICES   ssh connected" })

	out, _, _ := r.Eval("")
	if !strings.Contains(out, "DEV / SERVICES") {
		t.Errorf("out = %q, status line missing", out)
	}

	// The status line rides along with the module context line.
	r.Eval("/services")
	out, _, _ = r.Eval("")
	if !strings.Contains(out, "ssh connected") || !strings.Contains(out, "service control") {
		t.Errorf("out = %q", out)
	}
}

func TestMainClearsContext(t *testing.T) {
	r := testRouter()
	r.Eval("/services")
	if r.Context() != "services" {
		t.Fatalf("context = %q", r.Context())
	}

	out, exit, err := r.Eval("/main")
	if err != nil || exit {
		t.Fatalf("Eval: out=%q exit=%v err=%v", out, exit, err)
	}
	if r.Context() != "" {
		t.Errorf("context = %q, want cleared", r.Context())
	}

	out, _, _ = r.Eval("status")
	if !strings.Contains(out, "no module selected") {
		t.Errorf("bare line after /main = %q", out)
	}
}

func TestShellEscape(t *testing.T) {
	r := testRouter()
	var got string
	r.shell = func(cmd string) (string, error) {
		got = cmd
		return "ok", nil
	}
	out, exit, err := r.Eval("! echo hi")
	if err != nil || exit {
		t.Fatalf("Eval: %v", err)
	}
	if got != "echo hi" {
		t.Errorf("shell got %q", got)
	}
	if out != "ok" {
		t.Errorf("out = %q", out)
	}
}

func TestRealShellEscape(t *testing.T) {
	r := testRouter()
	out, _, err := r.Eval("!echo hello")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if out != "hello" {
		t.Errorf("out = %q", out)
	}
}
