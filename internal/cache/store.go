// Package cache is the background fact store. Producers write facts under
// TTL; the foreground render path reads without ever blocking, seeing
// StatusChecking until a fresh value lands.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Checking is the sentinel value rendered while a fact is missing or stale.
const Checking = "checking…"

// Status classifies a cache read.
type Status int

const (
	// StatusMissing means no value has ever been written for the key.
	StatusMissing Status = iota
	// StatusStale means a value exists but its TTL has lapsed.
	StatusStale
	// StatusFresh means the value is within its TTL.
	StatusFresh
)

// Entry is one cached fact.
type Entry struct {
	Key       string        `json:"key"`
	Value     string        `json:"value"`
	WrittenAt time.Time     `json:"written_at"`
	TTL       time.Duration `json:"ttl"`
}

// Store persists facts as individual JSON files so a crash mid-write can
// never corrupt unrelated keys. An in-memory map fronts the files; the
// files make facts survive restarts.
type Store struct {
	dir string

	mu      sync.RWMutex
	entries map[string]Entry

	now func() time.Time
}

// NewStore opens (creating if needed) the cache directory and loads any
// entries a previous run left behind.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	s := &Store{
		dir:     dir,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadAll() error {
	names, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("cache: scanning %s: %w", s.dir, err)
	}
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			continue
		}
		var e Entry
		if json.Unmarshal(data, &e) != nil || e.Key == "" {
			// A torn or foreign file; skip it rather than fail the open.
			continue
		}
		s.entries[e.Key] = e
	}
	return nil
}

// Put records a fact under the key with the given TTL, writing through to
// disk via a temp file and rename so readers never observe a partial file.
func (s *Store) Put(key, value string, ttl time.Duration) error {
	e := Entry{Key: key, Value: value, WrittenAt: s.now(), TTL: ttl}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}
	final := s.path(key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: publishing %s: %w", key, err)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Get returns the entry for the key and its freshness. It never blocks on
// I/O; the render path calls this on every frame.
func (s *Store) Get(key string) (Entry, Status) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{Key: key}, StatusMissing
	}
	if s.now().Sub(e.WrittenAt) > e.TTL {
		return e, StatusStale
	}
	return e, StatusFresh
}

// Value returns the displayable value for a key: the cached string while
// fresh, the Checking sentinel otherwise.
func (s *Store) Value(key string) string {
	e, st := s.Get(key)
	if st != StatusFresh {
		return Checking
	}
	return e.Value
}

// Invalidate marks the key stale without discarding the value, so a forced
// refresh shows Checking until the next publish lands.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.WrittenAt = time.Time{}
		s.entries[key] = e
	}
	s.mu.Unlock()
}

// Keys returns the cached keys, unordered.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

func (s *Store) path(key string) string {
	// Keys are namespaced like "ssh/dev" or "git/head"; flatten for the
	// filesystem.
	name := strings.ReplaceAll(key, "/", "_") + ".json"
	return filepath.Join(s.dir, name)
}
