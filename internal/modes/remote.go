package modes

import (
	"fmt"
	"strings"

	"tview/internal/nav"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// registerRemote installs the REMOTE mode: the environment's configured
// command list with each slot's execution state. Drilling in (or running
// the action) executes the selected command; output expands with the
// toggle key.
func registerRemote(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeRemote, registry.Entry{
		Items: func(env nav.Environment) int {
			e, ok := envConfig(d, env)
			if !ok || len(e.Commands) == 0 {
				return 1
			}
			return len(e.Commands)
		},
		Render: func(ctx registry.Context) string {
			return renderRemote(d, ctx)
		},
		Actions: func(env nav.Environment, item int) []registry.Action {
			e, ok := envConfig(d, env)
			if !ok || len(e.Commands) == 0 {
				return nil
			}
			return []registry.Action{{ID: "run", Label: "run command"}}
		},
		Drill: func(env nav.Environment, item int) error {
			return runRemote(d, env, item)
		},
		Run: func(env nav.Environment, item int, actionID string) error {
			if actionID != "run" {
				return fmt.Errorf("modes: unknown remote action %q", actionID)
			}
			return runRemote(d, env, item)
		},
	})
}

func remoteSlot(env nav.Environment, id string) string {
	return "remote/" + env.ConfigKey() + "/" + id
}

func renderRemote(d Deps, ctx registry.Context) string {
	e, ok := envConfig(d, ctx.Env)
	if !ok {
		return styles.Dim("environment " + ctx.Env.String() + " is not configured")
	}
	if len(e.Commands) == 0 {
		return styles.Dim("no commands configured for " + ctx.Env.String())
	}

	var sb strings.Builder
	for i, rc := range e.Commands {
		ex, haveExec := d.Exec.Get(remoteSlot(ctx.Env, rc.ID))
		row := cursor(i == ctx.Item) + execGlyph(ex, haveExec) + " " + styles.PadTo(rc.Label, 28)
		if haveExec {
			row += styles.Dim(ex.State.String())
			if ex.Reason != "" {
				row += styles.Dim(" (" + ex.Reason + ")")
			}
		} else {
			row += styles.Dim(rc.Command)
		}
		if i == ctx.Item {
			sb.WriteString(styles.Selected(row))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")

		if haveExec && ex.Result != "" && (ex.Expanded || (i == ctx.Item && ctx.Drill == nav.DrillDetail)) {
			for _, l := range strings.Split(ex.Result, "\n") {
				sb.WriteString("    " + styles.Dim(l) + "\n")
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func runRemote(d Deps, env nav.Environment, item int) error {
	e, ok := envConfig(d, env)
	if !ok {
		return fmt.Errorf("modes: environment %s is not configured", env)
	}
	if item < 0 || item >= len(e.Commands) {
		return fmt.Errorf("modes: no command selected")
	}
	rc := e.Commands[item]
	d.Exec.Execute(remoteSlot(env, rc.ID), toSpec(rc.Label, sshWrap(e, rc.Command)))
	return nil
}
