// Package rcm tracks remote command executions. Each command slot moves
// Idle → Executing → Success/Error and never backwards; re-running a slot
// supersedes the in-flight process rather than queueing behind it.
package rcm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle phase of one execution slot.
type State int

const (
	Idle State = iota
	Executing
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Executing:
		return "executing"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrUnknownExecution is returned for operations on an id the table has
// never seen.
var ErrUnknownExecution = errors.New("rcm: unknown execution")

// Spec describes what to run for a slot.
type Spec struct {
	Label string
	// Command is run through the shell; remote commands are full ssh
	// invocations assembled by the caller.
	Command string
	Timeout time.Duration
}

// Execution is the observable record of one slot.
type Execution struct {
	ID        string
	Label     string
	State     State
	Result    string
	ExitCode  int
	Reason    string
	Expanded  bool
	StartedAt time.Time
	EndedAt   time.Time
}

type slot struct {
	exec   Execution
	cancel context.CancelFunc
	gen    int
}

// Table owns every execution slot. All methods are safe for concurrent use;
// completions land from the runner goroutine while the foreground reads
// snapshots.
type Table struct {
	mu    sync.Mutex
	slots map[string]*slot

	// onChange, when set, fires after any state transition so the render
	// loop can invalidate its frame hash.
	onChange func()
}

// NewTable returns an empty execution table.
func NewTable() *Table {
	return &Table{slots: make(map[string]*slot)}
}

// OnChange registers a callback fired after every state transition.
func (t *Table) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

func (t *Table) notify() {
	if t.onChange != nil {
		go t.onChange()
	}
}

// Execute starts the spec under the given id. If the slot is already
// Executing, the running process is killed and the slot is overwritten;
// the superseded run never reports.
func (t *Table) Execute(id string, spec Spec) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	t.mu.Lock()
	s, ok := t.slots[id]
	if !ok {
		s = &slot{}
		t.slots[id] = s
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	expanded := s.exec.Expanded
	s.cancel = cancel
	s.exec = Execution{
		ID:        id,
		Label:     spec.Label,
		State:     Executing,
		Expanded:  expanded,
		StartedAt: time.Now(),
	}
	t.notify()
	t.mu.Unlock()

	go t.run(ctx, cancel, id, gen, spec)
}

func (t *Table) run(ctx context.Context, cancel context.CancelFunc, id string, gen int, spec Spec) {
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", spec.Command)
	out, err := cmd.CombinedOutput()

	result := strings.TrimRight(string(out), "\n")
	state := Success
	code := 0
	reason := ""
	if err != nil {
		state = Error
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			reason = fmt.Sprintf("exit %d", code)
		} else {
			reason = err.Error()
		}
		if ctx.Err() == context.DeadlineExceeded {
			reason = "timed out"
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[id]
	if !ok || s.gen != gen {
		// Superseded or cancelled; this run's outcome is discarded.
		return
	}
	if s.exec.State != Executing {
		return
	}
	s.exec.State = state
	s.exec.Result = result
	s.exec.ExitCode = code
	s.exec.Reason = reason
	s.exec.EndedAt = time.Now()
	s.cancel = nil
	t.notify()
}

// Cancel kills an executing slot and records it as Error with a cancelled
// reason. Cancelling a settled or unknown slot is a no-op.
func (t *Table) Cancel(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[id]
	if !ok {
		return ErrUnknownExecution
	}
	if s.exec.State != Executing {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.exec.State = Error
	s.exec.Reason = "cancelled"
	s.exec.ExitCode = -1
	s.exec.EndedAt = time.Now()
	t.notify()
	return nil
}

// CancelAll cancels every executing slot and reports how many it stopped.
func (t *Table) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.slots {
		if s.exec.State != Executing {
			continue
		}
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.gen++
		s.exec.State = Error
		s.exec.Reason = "cancelled"
		s.exec.ExitCode = -1
		s.exec.EndedAt = time.Now()
		n++
	}
	if n > 0 {
		t.notify()
	}
	return n
}

// ToggleExpanded flips whether the slot's full output renders inline.
func (t *Table) ToggleExpanded(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[id]
	if !ok {
		return ErrUnknownExecution
	}
	s.exec.Expanded = !s.exec.Expanded
	t.notify()
	return nil
}

// Get returns a copy of the slot's execution record.
func (t *Table) Get(id string) (Execution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[id]
	if !ok {
		return Execution{}, false
	}
	return s.exec, true
}

// Snapshot returns copies of every slot, ordered by id for stable render.
func (t *Table) Snapshot() []Execution {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Execution, 0, len(t.slots))
	for _, s := range t.slots {
		out = append(out, s.exec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sweep drops settled slots older than keep. Executing slots are never
// swept regardless of age.
func (t *Table) Sweep(keep time.Duration) int {
	cutoff := time.Now().Add(-keep)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, s := range t.slots {
		if s.exec.State == Executing {
			continue
		}
		if s.exec.State == Idle || s.exec.EndedAt.Before(cutoff) {
			delete(t.slots, id)
			removed++
		}
	}
	if removed > 0 {
		t.notify()
	}
	return removed
}
