package modes

import (
	"crypto/sha256"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"tview/internal/nav"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// sshKey is one discovered public key.
type sshKey struct {
	Name    string
	Path    string
	Type    string
	Comment string
	Line    string
}

// registerKeys installs the KEYS mode: an inventory of public keys from
// $TETRA_DIR/keys and ~/.ssh. Overview lists them; detail shows the full
// key line for copy/paste. The directory scan happens in the facts cache,
// not on render.
func registerKeys(reg *registry.Registry, d Deps) {
	reg.RegisterMode(nav.ModeKeys, registry.Entry{
		Items: func(env nav.Environment) int {
			n := len(d.Facts.keyList())
			if n == 0 {
				return 1
			}
			return n
		},
		Render: func(ctx registry.Context) string {
			keys := d.Facts.keyList()
			if len(keys) == 0 {
				return styles.Dim("no public keys found in $TETRA_DIR/keys or ~/.ssh")
			}
			if ctx.Drill == nav.DrillDetail {
				return renderKeyDetail(keys, ctx.Item)
			}
			return renderKeyList(keys, ctx)
		},
	})
}

func renderKeyList(keys []sshKey, ctx registry.Context) string {
	var sb strings.Builder
	for i, k := range keys {
		row := cursor(i == ctx.Item) + styles.PadTo(k.Name, 24) + styles.PadTo(k.Type, 14)
		if k.Comment != "" {
			row += k.Comment
		}
		if i == ctx.Item {
			sb.WriteString(styles.Selected(row))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderKeyDetail(keys []sshKey, item int) string {
	if item >= len(keys) {
		item = len(keys) - 1
	}
	k := keys[item]
	var sb strings.Builder
	sb.WriteString(styles.Title(k.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Dim(k.Path))
	sb.WriteString("\n")
	if fp := fingerprint(k.Line); fp != "" {
		sb.WriteString(styles.Dim(fp))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(k.Line)
	return sb.String()
}

// fingerprint computes the OpenSSH-style SHA256 fingerprint of a public
// key line.
func fingerprint(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	blob, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return "SHA256:" + strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")
}

// listKeys scans the key directories for *.pub files. Order is stable:
// data-dir keys first, then ~/.ssh, each sorted by the directory walk.
func listKeys(dataDir string) []sshKey {
	var dirs []string
	if dataDir != "" {
		dirs = append(dirs, filepath.Join(dataDir, "keys"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ssh"))
	}

	var keys []sshKey
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".pub") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			k := parseKey(path)
			if k.Line == "" {
				continue
			}
			keys = append(keys, k)
		}
	}
	return keys
}

// parseKey reads one public key file. Format: "<type> <base64> [comment]".
func parseKey(path string) sshKey {
	data, err := os.ReadFile(path)
	if err != nil {
		return sshKey{}
	}
	line := strings.TrimSpace(string(data))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return sshKey{}
	}

	k := sshKey{
		Name: strings.TrimSuffix(filepath.Base(path), ".pub"),
		Path: path,
		Line: line,
	}
	fields := strings.Fields(line)
	if len(fields) >= 1 {
		k.Type = fields[0]
	}
	if len(fields) >= 3 {
		k.Comment = strings.Join(fields[2:], " ")
	}
	return k
}
