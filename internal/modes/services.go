package modes

import (
	"fmt"
	"strings"

	"tview/internal/cache"
	"tview/internal/nav"
	"tview/internal/probe"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// serviceActions are offered on every service row.
var serviceActions = []registry.Action{
	{ID: "status", Label: "status"},
	{ID: "restart", Label: "restart"},
	{ID: "stop", Label: "stop"},
}

// registerServices installs the SERVICES mode: the environment's service
// list with cached reachability and the outcome of the last control
// command. Control commands run through the execution table; re-running
// one supersedes the in-flight run.
func registerServices(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeServices, registry.Entry{
		Items: func(env nav.Environment) int {
			e, ok := envConfig(d, env)
			if !ok || len(e.Services) == 0 {
				return 1
			}
			return len(e.Services)
		},
		Render: func(ctx registry.Context) string {
			return renderServices(d, ctx)
		},
		Actions: func(env nav.Environment, item int) []registry.Action {
			e, ok := envConfig(d, env)
			if !ok || len(e.Services) == 0 {
				return nil
			}
			return serviceActions
		},
		Run: func(env nav.Environment, item int, actionID string) error {
			return runServiceAction(d, env, item, actionID)
		},
	})
}

func serviceSlot(env nav.Environment, svc string) string {
	return "svc/" + env.ConfigKey() + "/" + svc
}

func renderServices(d Deps, ctx registry.Context) string {
	e, ok := envConfig(d, ctx.Env)
	if !ok {
		return styles.Dim("environment " + ctx.Env.String() + " is not configured")
	}
	if len(e.Services) == 0 {
		return styles.Dim("no services configured for " + ctx.Env.String())
	}

	var sb strings.Builder
	if ctx.Env.Remote() {
		sb.WriteString(reachabilityLine(d, ctx.Env))
		sb.WriteString("\n\n")
	}

	for i, svc := range e.Services {
		ex, haveExec := d.Exec.Get(serviceSlot(ctx.Env, svc))
		row := cursor(i == ctx.Item) + execGlyph(ex, haveExec) + " " + styles.PadTo(svc, 24)
		if haveExec {
			row += styles.Dim(fmt.Sprintf("%s %s", ex.Label, ex.State))
		}
		if i == ctx.Item {
			sb.WriteString(styles.Selected(row))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")

		// The drilled selection shows the last command output inline.
		if i == ctx.Item && ctx.Drill == nav.DrillDetail && haveExec && ex.Result != "" {
			for _, l := range strings.Split(ex.Result, "\n") {
				sb.WriteString("    " + styles.Dim(l) + "\n")
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// reachabilityLine renders the cached ssh status for a remote environment.
func reachabilityLine(d Deps, env nav.Environment) string {
	v := d.Cache.Value(probe.SSHKey(env.ConfigKey()))
	switch v {
	case probe.Connected:
		return styles.GlyphConnected() + " " + env.String() + " reachable"
	case probe.Unreachable:
		return styles.GlyphUnreachable() + " " + env.String() + " unreachable"
	case cache.Checking:
		return styles.GlyphChecking() + " " + env.String() + " " + cache.Checking
	default:
		return styles.GlyphChecking() + " " + env.String() + " " + v
	}
}

func runServiceAction(d Deps, env nav.Environment, item int, actionID string) error {
	e, ok := envConfig(d, env)
	if !ok {
		return fmt.Errorf("modes: environment %s is not configured", env)
	}
	if item < 0 || item >= len(e.Services) {
		return fmt.Errorf("modes: no service selected")
	}
	svc := e.Services[item]

	var command string
	switch actionID {
	case "status":
		command = "systemctl status --no-pager " + svc
	case "restart":
		command = "sudo systemctl restart " + svc + " && echo restarted"
	case "stop":
		command = "sudo systemctl stop " + svc + " && echo stopped"
	default:
		return fmt.Errorf("modes: unknown service action %q", actionID)
	}

	d.Exec.Execute(serviceSlot(env, svc), toSpec(actionID+" "+svc, sshWrap(e, command)))
	return nil
}
