package modes

import (
	"strings"

	"tview/internal/nav"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// registerOrg installs the ORG mode: the manifest list with the active org
// marked. Drilling in hands off to the full-screen picker.
func registerOrg(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeOrg, registry.Entry{
		Items: func(env nav.Environment) int {
			orgs, _ := d.Orgs.List()
			if len(orgs) == 0 {
				return 1
			}
			return len(orgs)
		},
		Render: func(ctx registry.Context) string {
			return renderOrgs(d, ctx)
		},
		Actions: func(env nav.Environment, item int) []registry.Action {
			return []registry.Action{{ID: "pick", Label: "switch org"}}
		},
		Drill: func(env nav.Environment, item int) error {
			if d.PickOrg == nil {
				return nil
			}
			return d.PickOrg()
		},
		Run: func(env nav.Environment, item int, actionID string) error {
			if d.PickOrg == nil {
				return nil
			}
			return d.PickOrg()
		},
	})
}

func renderOrgs(d Deps, ctx registry.Context) string {
	orgs, err := d.Orgs.List()
	if err != nil {
		return styles.ErrorText("reading orgs: " + err.Error())
	}
	if len(orgs) == 0 {
		return styles.Dim("no org manifests under $TETRA_DIR/orgs")
	}
	active, _ := d.Orgs.Active()

	var sb strings.Builder
	for i, o := range orgs {
		row := cursor(i == ctx.Item) + styles.PadTo(o.Name, 20)
		if o.Provider != "" {
			row += styles.PadTo(o.Provider, 12)
		}
		if o.Name == active {
			row += styles.Hint("active")
		}
		if i == ctx.Item {
			sb.WriteString(styles.Selected(row))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")

		if i == ctx.Item && ctx.Drill == nav.DrillDetail {
			if len(o.Domains) > 0 {
				sb.WriteString("    domains: " + styles.Dim(strings.Join(o.Domains, ", ")) + "\n")
			}
			if o.Notes != "" {
				sb.WriteString("    " + styles.Dim(o.Notes) + "\n")
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
