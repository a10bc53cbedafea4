package modes

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"tview/internal/config"
	"tview/internal/nav"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// registerConfig installs the CONFIG mode: a section view of the config
// file at overview, and a diff against the built-in defaults at detail.
// The section view survives a syntactically broken file via the raw
// scanner, so the mode never blanks. All reads go through the facts cache;
// the file is only re-parsed when the app refreshes it.
func registerConfig(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeConfig, registry.Entry{
		Items: func(env nav.Environment) int {
			n := len(d.Facts.view().Sections)
			if n == 0 {
				return 1
			}
			return n
		},
		Render: func(ctx registry.Context) string {
			if ctx.Drill == nav.DrillDetail {
				return renderConfigDiff(d)
			}
			return renderConfigSections(d.Facts.view(), ctx)
		},
		Actions: func(env nav.Environment, item int) []registry.Action {
			return []registry.Action{
				{ID: "edit", Label: "edit config"},
				{ID: "view", Label: "view raw file"},
			}
		},
		Run: func(env nav.Environment, item int, actionID string) error {
			switch actionID {
			case "edit":
				if d.Edit == nil {
					return fmt.Errorf("modes: no editor available")
				}
				return d.Edit(d.ConfigPath)
			case "view":
				if d.ShowText == nil {
					return fmt.Errorf("modes: no text viewer available")
				}
				data, err := os.ReadFile(d.ConfigPath)
				if err != nil {
					if os.IsNotExist(err) {
						return fmt.Errorf("modes: no configuration file at %s", d.ConfigPath)
					}
					return err
				}
				return d.ShowText("tview.toml", string(data))
			}
			return fmt.Errorf("modes: unknown config action %q", actionID)
		},
	})
}

func renderConfigSections(f *config.File, ctx registry.Context) string {
	var sb strings.Builder
	if len(f.Sections) == 0 {
		sb.WriteString(styles.Dim("no configuration file; run `tview config init`"))
		return sb.String()
	}
	if f.Raw {
		sb.WriteString(styles.ErrorText("config file has syntax errors; showing raw view"))
		sb.WriteString("\n\n")
	}

	for i, s := range f.Sections {
		name := s.Name
		if name == "" {
			name = "(top level)"
		}
		row := cursor(i == ctx.Item) + name
		if i == ctx.Item {
			sb.WriteString(styles.Selected(row))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")
		if i == ctx.Item {
			for _, kv := range s.Keys {
				sb.WriteString(fmt.Sprintf("    %s = %s\n", kv.Key, styles.Dim(kv.Value)))
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// renderConfigDiff shows how the cached file text departs from the
// commented defaults.
func renderConfigDiff(d Deps) string {
	current := d.Facts.raw()
	if current == "" {
		return styles.Dim("no configuration file to diff")
	}

	var def strings.Builder
	if err := config.Print(config.Default(), &def); err != nil {
		return styles.ErrorText("rendering defaults: " + err.Error())
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(def.String(), current, true)
	dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	sb.WriteString(styles.Title("config vs defaults"))
	sb.WriteString("\n\n")
	for _, diff := range diffs {
		text := strings.TrimRight(diff.Text, "\n")
		if text == "" {
			continue
		}
		for _, l := range strings.Split(text, "\n") {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				sb.WriteString(styles.Hint("+ " + l))
			case diffmatchpatch.DiffDelete:
				sb.WriteString(styles.Dim("- " + l))
			default:
				sb.WriteString("  " + l)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
