package modes

import (
	"fmt"
	"strings"

	"tview/internal/nav"
	"tview/internal/probe"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// registerDeploy installs the DEPLOY mode: cached git facts for the source
// checkout plus the environment's deploy command. Deploying to PROD always
// goes through a confirmation dialog; an unanswered dialog declines.
func registerDeploy(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeDeploy, registry.Entry{
		Items: func(env nav.Environment) int { return 1 },
		Render: func(ctx registry.Context) string {
			return renderDeploy(d, ctx)
		},
		Actions: func(env nav.Environment, item int) []registry.Action {
			var actions []registry.Action
			if _, ok := envCommand(d, env, "deploy"); ok {
				actions = append(actions, registry.Action{ID: "deploy", Label: "deploy to " + env.String()})
			}
			if _, ok := envCommand(d, env, "rollback"); ok {
				actions = append(actions, registry.Action{ID: "rollback", Label: "roll back " + env.String()})
			}
			return actions
		},
		Run: func(env nav.Environment, item int, actionID string) error {
			return runDeploy(d, env, actionID)
		},
	})
}

func deploySlot(env nav.Environment) string {
	return "deploy/" + env.ConfigKey()
}

// envCommand looks up a configured command by id.
func envCommand(d Deps, env nav.Environment, id string) (string, bool) {
	e, ok := envConfig(d, env)
	if !ok {
		return "", false
	}
	for _, rc := range e.Commands {
		if rc.ID == id {
			return rc.Command, true
		}
	}
	return "", false
}

func renderDeploy(d Deps, ctx registry.Context) string {
	var sb strings.Builder
	sb.WriteString(styles.Title("source"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  branch  %s\n", d.Cache.Value(probe.GitKey("branch"))))
	sb.WriteString(fmt.Sprintf("  head    %s\n", d.Cache.Value(probe.GitKey("head"))))
	sb.WriteString(fmt.Sprintf("  tree    %s\n", d.Cache.Value(probe.GitKey("status"))))
	sb.WriteString("\n")

	sb.WriteString(styles.Title("deploy " + ctx.Env.String()))
	sb.WriteString("\n")
	cmd, ok := envCommand(d, ctx.Env, "deploy")
	if !ok {
		sb.WriteString(styles.Dim("  no deploy command configured (add one with id = \"deploy\")"))
		return sb.String()
	}
	sb.WriteString("  " + styles.Dim(cmd) + "\n")
	if rb, ok := envCommand(d, ctx.Env, "rollback"); ok {
		sb.WriteString("  " + styles.Dim("rollback: "+rb) + "\n")
	}

	if ex, haveExec := d.Exec.Get(deploySlot(ctx.Env)); haveExec {
		sb.WriteString(fmt.Sprintf("  last: %s %s", execGlyph(ex, true), ex.State))
		if ex.Reason != "" {
			sb.WriteString(" (" + ex.Reason + ")")
		}
		sb.WriteString("\n")
		if ctx.Drill == nav.DrillDetail && ex.Result != "" {
			sb.WriteString("\n")
			for _, l := range strings.Split(ex.Result, "\n") {
				sb.WriteString("  " + styles.Dim(l) + "\n")
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func runDeploy(d Deps, env nav.Environment, actionID string) error {
	if actionID != "deploy" && actionID != "rollback" {
		return fmt.Errorf("modes: unknown deploy action %q", actionID)
	}
	command, ok := envCommand(d, env, actionID)
	if !ok {
		return fmt.Errorf("modes: no %s command configured for %s", actionID, env)
	}

	if env == nav.EnvProd && d.Confirm != nil {
		title := "Deploy to PROD?"
		body := "This runs the configured deploy command against production."
		if actionID == "rollback" {
			title = "Roll back PROD?"
			body = "This runs the configured rollback command against production."
		}
		yes, err := d.Confirm(title, body)
		if err != nil {
			return err
		}
		if !yes {
			return nil
		}
	}

	e, _ := envConfig(d, env)
	d.Exec.Execute(deploySlot(env), toSpec(actionID+" "+env.String(), sshWrap(e, command)))
	return nil
}
