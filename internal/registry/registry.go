// Package registry maps (mode, environment) pairs to their content: item
// count, body renderer, action list and drill handler. Mode packages
// register entries at startup; after that the registry is read-only, so the
// render loop reads it without locking.
package registry

import (
	"fmt"

	"tview/internal/nav"
)

// Action is one operation offered on the current selection.
type Action struct {
	ID    string
	Label string
}

// Context carries everything a renderer may consult. Renderers must not
// perform network I/O; expensive facts come pre-published through the cache.
type Context struct {
	Env   nav.Environment
	Mode  nav.Mode
	Item  int
	Drill int
	Width int
}

// Entry is the registered content for one (mode, environment) pair.
type Entry struct {
	// Items reports how many selectable items the pair currently has.
	Items func(env nav.Environment) int
	// Render produces the body block for the pair.
	Render func(ctx Context) string
	// Actions lists the operations offered on a selection, in display order.
	Actions func(env nav.Environment, item int) []Action
	// Drill, if set, runs when the user drills into the selection.
	Drill func(env nav.Environment, item int) error
	// Run, if set, executes one of the listed actions on the selection.
	Run func(env nav.Environment, item int, actionID string) error
}

type key struct {
	mode nav.Mode
	env  nav.Environment
	wide bool // mode-wide entry, any environment
}

// Registry is the lookup table consulted by the render engine and by
// navigation bounds checking.
type Registry struct {
	entries map[key]Entry
	sealed  bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[key]Entry)}
}

// Register installs an entry for a specific (mode, environment) pair.
// Registration happens during startup only; registering after Seal panics,
// as does double registration (both are programming errors).
func (r *Registry) Register(m nav.Mode, e nav.Environment, entry Entry) {
	r.put(key{mode: m, env: e}, entry)
}

// RegisterMode installs a mode-wide entry used for every environment that
// has no specific registration.
func (r *Registry) RegisterMode(m nav.Mode, entry Entry) {
	r.put(key{mode: m, wide: true}, entry)
}

func (r *Registry) put(k key, entry Entry) {
	if r.sealed {
		panic(fmt.Sprintf("registry: registration after seal (%v)", k))
	}
	if _, dup := r.entries[k]; dup {
		panic(fmt.Sprintf("registry: duplicate registration (%v)", k))
	}
	r.entries[k] = entry
}

// Seal marks the end of registration. The render loop only runs against a
// sealed registry.
func (r *Registry) Seal() { r.sealed = true }

// Lookup returns the entry for the pair, falling back to the mode-wide
// entry. The second result is false when neither exists.
func (r *Registry) Lookup(m nav.Mode, e nav.Environment) (Entry, bool) {
	if entry, ok := r.entries[key{mode: m, env: e}]; ok {
		return entry, true
	}
	if entry, ok := r.entries[key{mode: m, wide: true}]; ok {
		return entry, true
	}
	return Entry{}, false
}

// ItemCount implements nav.Bounds.
func (r *Registry) ItemCount(m nav.Mode, e nav.Environment) int {
	entry, ok := r.Lookup(m, e)
	if !ok || entry.Items == nil {
		return 0
	}
	n := entry.Items(e)
	if n < 0 {
		return 0
	}
	return n
}

// ActionsFor returns the action list for the selection, or nil.
func (r *Registry) ActionsFor(m nav.Mode, e nav.Environment, item int) []Action {
	entry, ok := r.Lookup(m, e)
	if !ok || entry.Actions == nil {
		return nil
	}
	return entry.Actions(e, item)
}

// RunFor returns the action executor for the pair, or nil.
func (r *Registry) RunFor(m nav.Mode, e nav.Environment) func(env nav.Environment, item int, actionID string) error {
	entry, ok := r.Lookup(m, e)
	if !ok {
		return nil
	}
	return entry.Run
}

// DrillFor returns the drill handler for the pair, or nil.
func (r *Registry) DrillFor(m nav.Mode, e nav.Environment) func(env nav.Environment, item int) error {
	entry, ok := r.Lookup(m, e)
	if !ok {
		return nil
	}
	return entry.Drill
}
