// Package config loads the tview TOML configuration and resolves the
// environment-variable inputs that locate data, org and cache paths.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variable names. TETRA_DIR is required; TETRA_SRC is optional
// and only used to locate an editable source checkout.
const (
	EnvDir = "TETRA_DIR"
	EnvSrc = "TETRA_SRC"
)

// ErrNoDataDir is returned when TETRA_DIR is unset or not a directory.
var ErrNoDataDir = fmt.Errorf("config: %s is not set to a directory", EnvDir)

// Config is the typed tview configuration.
type Config struct {
	// Org overrides the active org recorded in $TETRA_DIR/org.
	Org string `toml:"org"`

	UI           UIConfig             `toml:"ui"`
	Cache        CacheConfig          `toml:"cache"`
	Environments map[string]EnvConfig `toml:"environments"`
}

// UIConfig tunes the interactive loop.
type UIConfig struct {
	// RefreshEvery is the number of input events between local fact
	// refreshes (config/git/service lists).
	RefreshEvery int `toml:"refresh_every"`
	// SSHRefreshEvery is the number of input events between forced
	// SSH-dependent refreshes. SSH facts otherwise ride the background
	// cache poll, so this is deliberately larger.
	SSHRefreshEvery int `toml:"ssh_refresh_every"`
	// HintSeconds is how long a transient action hint stays on screen.
	HintSeconds int `toml:"hint_seconds"`
}

// CacheConfig tunes the background cache manager.
type CacheConfig struct {
	PollSeconds int `toml:"poll_seconds"`
	TTLSeconds  int `toml:"ttl_seconds"`
}

// EnvConfig describes one target environment.
type EnvConfig struct {
	Host     string          `toml:"host"`
	User     string          `toml:"user"`
	Port     int             `toml:"port"`
	Services []string        `toml:"services"`
	Commands []RemoteCommand `toml:"commands"`
}

// SSHTarget returns the user@host form used by ssh, or "" for a local
// environment with no host.
func (e EnvConfig) SSHTarget() string {
	if e.Host == "" {
		return ""
	}
	if e.User == "" {
		return e.Host
	}
	return e.User + "@" + e.Host
}

// RemoteCommand is one entry in the REMOTE mode's command list.
type RemoteCommand struct {
	ID      string `toml:"id"`
	Label   string `toml:"label"`
	Command string `toml:"command"`
}

// Dir returns the root data directory from TETRA_DIR.
func Dir() (string, error) {
	dir := os.Getenv(EnvDir)
	if dir == "" {
		return "", ErrNoDataDir
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", ErrNoDataDir
	}
	return dir, nil
}

// SrcDir returns the optional source/install directory from TETRA_SRC.
func SrcDir() string { return os.Getenv(EnvSrc) }

// Path returns the config file path under the data directory.
func Path(dataDir string) string { return filepath.Join(dataDir, "tview.toml") }

// CacheDir returns the runtime cache directory under the data directory.
func CacheDir(dataDir string) string { return filepath.Join(dataDir, "cache", "tview") }

// OrgsDir returns the directory holding org manifests.
func OrgsDir(dataDir string) string { return filepath.Join(dataDir, "orgs") }

// ActiveOrgPath returns the file recording the active org name.
func ActiveOrgPath(dataDir string) string { return filepath.Join(dataDir, "org") }

// Default returns the built-in configuration. The dashboard runs on it when
// no config file exists; the view then shows an explicit "no configuration"
// state rather than failing.
func Default() *Config {
	return &Config{
		UI: UIConfig{
			RefreshEvery:    10,
			SSHRefreshEvery: 50,
			HintSeconds:     4,
		},
		Cache: CacheConfig{
			PollSeconds: 30,
			TTLSeconds:  60,
		},
		Environments: map[string]EnvConfig{
			"local": {Services: []string{}},
		},
	}
}

// Load reads the config file, backfilling defaults for missing values.
// A missing file degrades to Default() with found=false; a malformed file
// returns an error so the caller can fall back to the raw scanner.
func Load(path string) (cfg *Config, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), false, nil
		}
		return Default(), false, err
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Default(), true, fmt.Errorf("parsing %s: %w", path, err)
	}

	d := Default()
	if c.UI.RefreshEvery <= 0 {
		c.UI.RefreshEvery = d.UI.RefreshEvery
	}
	if c.UI.SSHRefreshEvery <= 0 {
		c.UI.SSHRefreshEvery = d.UI.SSHRefreshEvery
	}
	if c.UI.HintSeconds <= 0 {
		c.UI.HintSeconds = d.UI.HintSeconds
	}
	if c.Cache.PollSeconds <= 0 {
		c.Cache.PollSeconds = d.Cache.PollSeconds
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = d.Cache.TTLSeconds
	}
	if c.Environments == nil {
		c.Environments = d.Environments
	}
	for name, env := range c.Environments {
		if env.Port == 0 {
			env.Port = 22
			c.Environments[name] = env
		}
	}

	// Environment variable override for the active org.
	if org := os.Getenv("TETRA_ORG"); org != "" {
		c.Org = org
	}

	return &c, true, nil
}

// Env returns the configuration for the named environment.
func (c *Config) Env(name string) (EnvConfig, bool) {
	e, ok := c.Environments[name]
	return e, ok
}

// EnvNames returns the configured environment names, sorted.
func (c *Config) EnvNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Print writes a commented default config file.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# tview configuration")
	fmt.Fprintln(w, "# Lives at $TETRA_DIR/tview.toml")
	fmt.Fprintln(w)
	if cfg.Org != "" {
		fmt.Fprintf(w, "org = %q\n", cfg.Org)
	} else {
		fmt.Fprintln(w, "# org = \"myorg\"  # override the active org")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[ui]")
	fmt.Fprintf(w, "refresh_every = %d      # input events between local fact refreshes\n", cfg.UI.RefreshEvery)
	fmt.Fprintf(w, "ssh_refresh_every = %d  # input events between forced SSH refreshes\n", cfg.UI.SSHRefreshEvery)
	fmt.Fprintf(w, "hint_seconds = %d        # how long transient hints stay visible\n", cfg.UI.HintSeconds)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[cache]")
	fmt.Fprintf(w, "poll_seconds = %d  # background reachability poll interval\n", cfg.Cache.PollSeconds)
	fmt.Fprintf(w, "ttl_seconds = %d   # age after which cached facts read as checking\n", cfg.Cache.TTLSeconds)
	fmt.Fprintln(w)

	names := cfg.EnvNames()
	for _, name := range names {
		env := cfg.Environments[name]
		fmt.Fprintf(w, "[environments.%s]\n", name)
		if env.Host != "" {
			fmt.Fprintf(w, "host = %q\n", env.Host)
		} else {
			fmt.Fprintln(w, "# host = \"dev.example.com\"")
		}
		if env.User != "" {
			fmt.Fprintf(w, "user = %q\n", env.User)
		}
		if env.Port != 0 && env.Port != 22 {
			fmt.Fprintf(w, "port = %d\n", env.Port)
		}
		if len(env.Services) > 0 {
			items := make([]string, len(env.Services))
			for i, s := range env.Services {
				items[i] = fmt.Sprintf("%q", s)
			}
			fmt.Fprintf(w, "services = [%s]\n", strings.Join(items, ", "))
		} else {
			fmt.Fprintln(w, "# services = [\"nginx\", \"app\"]")
		}
		fmt.Fprintln(w)
		for _, rc := range env.Commands {
			fmt.Fprintf(w, "[[environments.%s.commands]]\n", name)
			fmt.Fprintf(w, "id = %q\n", rc.ID)
			fmt.Fprintf(w, "label = %q\n", rc.Label)
			fmt.Fprintf(w, "command = %q\n", rc.Command)
			fmt.Fprintln(w)
		}
	}
	return nil
}
