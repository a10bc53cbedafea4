// Package modes registers the content producers for every dashboard mode:
// CONFIG, KEYS, SERVICES, DEPLOY, ORG and REMOTE. Each producer renders
// from config and cached facts only; anything slow runs through the
// execution table or the background cache.
package modes

import (
	"fmt"
	"strings"

	"tview/internal/cache"
	"tview/internal/config"
	"tview/internal/nav"
	"tview/internal/org"
	"tview/internal/rcm"
	"tview/internal/registry"
)

// Deps is everything the producers need. Config is a getter so a reload
// swaps the snapshot without re-registration.
type Deps struct {
	Config     func() *config.Config
	ConfigPath string
	DataDir    string
	Cache      *cache.Store
	Exec       *rcm.Table
	Orgs       *org.Store
	// Facts is the throttled filesystem-fact cache the CONFIG and KEYS
	// producers render from.
	Facts *Facts

	// PickOrg suspends the dashboard and runs the full-screen org selector.
	PickOrg func() error
	// Confirm shows a blocking confirmation dialog and reports the answer.
	Confirm func(title, body string) (bool, error)
	// Edit suspends the dashboard and opens the file in $EDITOR.
	Edit func(path string) error
	// ShowText displays a text overlay that stays open across navigation
	// keys.
	ShowText func(title, body string) error
}

// Register installs all six modes into the registry. The caller seals it.
func Register(reg *registry.Registry, d Deps) {
	registerConfig(reg, d)
	registerKeys(reg, d)
	registerServices(reg, d)
	registerDeploy(reg, d)
	registerOrg(reg, d)
	registerRemote(reg, d)
}

// envConfig resolves the environment's config block, which may be absent.
func envConfig(d Deps, env nav.Environment) (config.EnvConfig, bool) {
	return d.Config().Env(env.ConfigKey())
}

// sshWrap turns a command into its remote form when the environment has an
// ssh target, leaving local commands untouched.
func sshWrap(e config.EnvConfig, command string) string {
	target := e.SSHTarget()
	if target == "" {
		return command
	}
	quoted := "'" + strings.ReplaceAll(command, "'", `'\''`) + "'"
	if e.Port != 0 && e.Port != 22 {
		return fmt.Sprintf("ssh -o BatchMode=yes -o ConnectTimeout=1 -p %d %s %s", e.Port, target, quoted)
	}
	return fmt.Sprintf("ssh -o BatchMode=yes -o ConnectTimeout=1 %s %s", target, quoted)
}

// toSpec builds the execution spec for a labeled shell command.
func toSpec(label, command string) rcm.Spec {
	return rcm.Spec{Label: label, Command: command}
}

// execGlyph summarizes an execution slot for list rows.
func execGlyph(e rcm.Execution, ok bool) string {
	if !ok {
		return " "
	}
	switch e.State {
	case rcm.Executing:
		return "…"
	case rcm.Success:
		return "✓"
	case rcm.Error:
		return "✗"
	}
	return " "
}

// cursor marks the selected row in overview lists.
func cursor(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
