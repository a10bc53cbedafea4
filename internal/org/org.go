// Package org manages organization manifests under $TETRA_DIR/orgs and the
// active-org marker file. Manifests are YAML, one file per org.
package org

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoActiveOrg is returned when no org has been activated yet.
var ErrNoActiveOrg = errors.New("org: no active org")

// Org is one organization manifest.
type Org struct {
	Name     string   `yaml:"name"`
	Provider string   `yaml:"provider"`
	Domains  []string `yaml:"domains"`
	Notes    string   `yaml:"notes,omitempty"`
}

// Store reads and writes manifests in one orgs directory plus the active
// marker file next to it.
type Store struct {
	orgsDir    string
	activePath string
}

// NewStore returns a store over the given paths. The orgs directory is
// created lazily on first write.
func NewStore(orgsDir, activePath string) *Store {
	return &Store{orgsDir: orgsDir, activePath: activePath}
}

// List returns every manifest, sorted by name. A missing directory is an
// empty list, not an error.
func (s *Store) List() ([]Org, error) {
	entries, err := os.ReadDir(s.orgsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("org: reading %s: %w", s.orgsDir, err)
	}

	var orgs []Org
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml")) {
			continue
		}
		o, err := s.load(filepath.Join(s.orgsDir, name))
		if err != nil {
			// A broken manifest shows up as an entry carrying its error
			// rather than hiding the whole list.
			orgs = append(orgs, Org{Name: strings.TrimSuffix(strings.TrimSuffix(name, ".yml"), ".yaml"), Notes: "broken manifest: " + err.Error()})
			continue
		}
		orgs = append(orgs, o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}

func (s *Store) load(path string) (Org, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Org{}, err
	}
	var o Org
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Org{}, err
	}
	if o.Name == "" {
		base := filepath.Base(path)
		o.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".yml"), ".yaml")
	}
	return o, nil
}

// Get returns the named manifest.
func (s *Store) Get(name string) (Org, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		path := filepath.Join(s.orgsDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return s.load(path)
		}
	}
	return Org{}, fmt.Errorf("org: no manifest for %q", name)
}

// Save writes the manifest, creating the orgs directory if needed.
func (s *Store) Save(o Org) error {
	if o.Name == "" {
		return errors.New("org: manifest needs a name")
	}
	if err := os.MkdirAll(s.orgsDir, 0o755); err != nil {
		return fmt.Errorf("org: creating %s: %w", s.orgsDir, err)
	}
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("org: encoding %s: %w", o.Name, err)
	}
	final := filepath.Join(s.orgsDir, o.Name+".yml")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("org: writing %s: %w", o.Name, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("org: publishing %s: %w", o.Name, err)
	}
	return nil
}

// Active returns the active org name from the marker file.
func (s *Store) Active() (string, error) {
	data, err := os.ReadFile(s.activePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoActiveOrg
		}
		return "", fmt.Errorf("org: reading %s: %w", s.activePath, err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", ErrNoActiveOrg
	}
	return name, nil
}

// SetActive records the active org. The named org must have a manifest.
func (s *Store) SetActive(name string) error {
	if _, err := s.Get(name); err != nil {
		return err
	}
	tmp := s.activePath + ".tmp"
	if err := os.WriteFile(tmp, []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("org: writing marker: %w", err)
	}
	if err := os.Rename(tmp, s.activePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("org: publishing marker: %w", err)
	}
	return nil
}
