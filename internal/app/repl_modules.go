package app

import (
	"fmt"
	"strings"
	"time"

	"tview/internal/config"
	"tview/internal/nav"
	"tview/internal/repl"
)

// registerREPLModules wires the command-line modules. Each one drives the
// same registry operations the gamepad keys do, with explicit arguments in
// place of the selection.
func (a *App) registerREPLModules() {
	a.router.Register(repl.Module{
		Name:    "env",
		Summary: "switch environment (env dev)",
		Handle:  a.replEnv,
	})
	a.router.Register(repl.Module{
		Name:    "mode",
		Summary: "switch mode (mode services)",
		Handle:  a.replMode,
	})
	a.router.Register(repl.Module{
		Name:    "services",
		Summary: "service control (status|restart|stop <service>)",
		Handle:  a.replServices,
	})
	a.router.Register(repl.Module{
		Name:    "deploy",
		Summary: "deploy the current environment (deploy run)",
		Handle:  a.replDeploy,
	})
	a.router.Register(repl.Module{
		Name:    "remote",
		Summary: "run a configured command (remote <id>)",
		Handle:  a.replRemote,
	})
	a.router.Register(repl.Module{
		Name:    "org",
		Summary: "org manifests (list | use <name>)",
		Handle:  a.replOrg,
	})
	a.router.Register(repl.Module{
		Name:    "status",
		Summary: "execution table and cache state",
		Handle:  a.replStatus,
	})
}

func (a *App) currentEnvConfig() (nav.Environment, config.EnvConfig, bool) {
	env := a.machine.State().Env
	e, ok := a.snapshot().Env(env.ConfigKey())
	return env, e, ok
}

func (a *App) replEnv(args string) (string, error) {
	if args == "" {
		return "environment: " + a.machine.State().Env.String(), nil
	}
	want := strings.ToLower(strings.TrimSpace(args))
	for _, env := range nav.Environments {
		if env.ConfigKey() == want {
			for a.machine.State().Env != env {
				a.machine.CycleEnvironment(nav.Forward)
			}
			return "environment: " + env.String(), nil
		}
	}
	return fmt.Sprintf("unknown environment %q", args), nil
}

func (a *App) replMode(args string) (string, error) {
	if args == "" {
		return "mode: " + a.machine.State().Mode.String(), nil
	}
	want := strings.ToUpper(strings.TrimSpace(args))
	for _, m := range nav.Modes {
		if m.String() == want {
			for a.machine.State().Mode != m {
				a.machine.CycleMode(nav.Forward)
			}
			return "mode: " + m.String(), nil
		}
	}
	return fmt.Sprintf("unknown mode %q", args), nil
}

func (a *App) replServices(args string) (string, error) {
	env, e, ok := a.currentEnvConfig()
	if !ok {
		return "environment " + env.String() + " is not configured", nil
	}
	if args == "" {
		if len(e.Services) == 0 {
			return "no services configured", nil
		}
		return strings.Join(e.Services, "\n"), nil
	}

	action, svc := splitArg(args)
	if svc == "" {
		return "usage: status|restart|stop <service>", nil
	}
	item := -1
	for i, s := range e.Services {
		if s == svc {
			item = i
			break
		}
	}
	if item < 0 {
		return fmt.Sprintf("unknown service %q", svc), nil
	}

	run := a.reg.RunFor(nav.ModeServices, env)
	if run == nil {
		return "services are not available here", nil
	}
	if err := run(env, item, action); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s started", action, svc), nil
}

func (a *App) replDeploy(args string) (string, error) {
	env := a.machine.State().Env
	if args != "run" {
		return "usage: deploy run", nil
	}
	run := a.reg.RunFor(nav.ModeDeploy, env)
	if run == nil {
		return "deploy is not available here", nil
	}
	if err := run(env, 0, "deploy"); err != nil {
		return "", err
	}
	return "deploy started for " + env.String(), nil
}

func (a *App) replRemote(args string) (string, error) {
	env, e, ok := a.currentEnvConfig()
	if !ok {
		return "environment " + env.String() + " is not configured", nil
	}
	if args == "" {
		if len(e.Commands) == 0 {
			return "no commands configured", nil
		}
		var sb strings.Builder
		for _, rc := range e.Commands {
			fmt.Fprintf(&sb, "%-16s %s\n", rc.ID, rc.Label)
		}
		return strings.TrimSuffix(sb.String(), "\n"), nil
	}

	id, _ := splitArg(args)
	item := -1
	for i, rc := range e.Commands {
		if rc.ID == id {
			item = i
			break
		}
	}
	if item < 0 {
		return fmt.Sprintf("unknown command %q", id), nil
	}
	run := a.reg.RunFor(nav.ModeRemote, env)
	if run == nil {
		return "commands are not available here", nil
	}
	if err := run(env, item, "run"); err != nil {
		return "", err
	}
	return "running " + id, nil
}

func (a *App) replOrg(args string) (string, error) {
	verb, name := splitArg(args)
	switch verb {
	case "", "list":
		orgs, err := a.orgs.List()
		if err != nil {
			return "", err
		}
		if len(orgs) == 0 {
			return "no org manifests", nil
		}
		active, _ := a.orgs.Active()
		var sb strings.Builder
		for _, o := range orgs {
			marker := "  "
			if o.Name == active {
				marker = "* "
			}
			sb.WriteString(marker + o.Name + "\n")
		}
		return strings.TrimSuffix(sb.String(), "\n"), nil
	case "use":
		if name == "" {
			return "usage: org use <name>", nil
		}
		if err := a.orgs.SetActive(name); err != nil {
			return "", err
		}
		return "active org: " + name, nil
	}
	return "usage: org list | org use <name>", nil
}

func (a *App) replStatus(args string) (string, error) {
	var sb strings.Builder

	running, lastTick := a.manager.Status()
	if running {
		fmt.Fprintf(&sb, "cache: polling (last sweep %s ago)\n", time.Since(lastTick).Round(time.Second))
	} else {
		sb.WriteString("cache: stopped\n")
	}

	execs := a.execs.Snapshot()
	if len(execs) == 0 {
		sb.WriteString("no executions")
		return sb.String(), nil
	}
	for _, e := range execs {
		fmt.Fprintf(&sb, "%-28s %-10s", e.ID, e.State)
		if e.Reason != "" {
			fmt.Fprintf(&sb, " %s", e.Reason)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func splitArg(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
