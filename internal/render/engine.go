// Package render composes dashboard frames and writes them to the terminal,
// skipping the write entirely when the frame hash is unchanged. One frame is
// header (brand, org, environment and mode badge rows), body (the registry's
// content for the current position) and footer (actions and hint).
package render

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tview/internal/nav"
	"tview/internal/registry"
	"tview/internal/tui/styles"
)

// Sink is where composed frames go. *term.Screen satisfies it; tests use
// an in-memory fake to count writes.
type Sink interface {
	Clear()
	Write(text string)
}

// Frame is everything that varies between renders.
type Frame struct {
	State  nav.State
	Org    string
	Hint   string
	Width  int
	Height int
}

// Engine renders frames against a sealed registry.
type Engine struct {
	sink Sink
	reg  *registry.Registry

	revision atomic.Uint64

	lastHash  uint64
	lastFrame string
	draws     int
}

// New returns an engine writing to the sink.
func New(sink Sink, reg *registry.Registry) *Engine {
	return &Engine{sink: sink, reg: reg}
}

// Invalidate forces the next Render to redraw even if the composed frame is
// byte-identical. Background publishers and the modal subsystem call this;
// it is the only engine method safe off the foreground goroutine.
func (e *Engine) Invalidate() {
	e.revision.Add(1)
}

// Render composes the frame and writes it unless nothing changed since the
// last draw. It reports whether a write happened.
func (e *Engine) Render(f Frame) bool {
	frame := e.compose(f)

	h := fnv.New64a()
	h.Write([]byte(frame))
	rev := e.revision.Load()
	var revBytes [8]byte
	for i := 0; i < 8; i++ {
		revBytes[i] = byte(rev >> (8 * i))
	}
	h.Write(revBytes[:])
	sum := h.Sum64()

	if sum == e.lastHash && e.draws > 0 {
		return false
	}
	e.lastHash = sum
	e.lastFrame = frame
	e.draws++

	e.sink.Clear()
	e.sink.Write(frame)
	return true
}

// Redraw rewrites the last composed frame unconditionally. The modal
// subsystem uses it to restore the dashboard after an overlay closes.
func (e *Engine) Redraw() {
	if e.lastFrame == "" {
		return
	}
	e.sink.Clear()
	e.sink.Write(e.lastFrame)
}

// LastFrame returns the most recently composed frame.
func (e *Engine) LastFrame() string { return e.lastFrame }

// Draws returns how many frames were actually written.
func (e *Engine) Draws() int { return e.draws }

func (e *Engine) compose(f Frame) string {
	width := f.Width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(e.header(f, width))
	sb.WriteString("\r\n")
	sb.WriteString(e.body(f, width))
	sb.WriteString("\r\n")
	sb.WriteString(e.footer(f, width))
	return sb.String()
}

func (e *Engine) header(f Frame, width int) string {
	var sb strings.Builder

	brand := styles.Title("tview")
	if f.Org != "" {
		brand += "  " + styles.Dim("org:"+f.Org)
	}
	sb.WriteString(line(brand, width))

	var envs []string
	for _, env := range nav.Environments {
		envs = append(envs, styles.EnvBadge(env, env == f.State.Env))
	}
	sb.WriteString(line(strings.Join(envs, " "), width))

	var modes []string
	for _, m := range nav.Modes {
		modes = append(modes, styles.ModeBadge(m, m == f.State.Mode))
	}
	sb.WriteString(line(strings.Join(modes, " "), width))

	sb.WriteString(line(styles.Divider(width), width))
	return strings.TrimSuffix(sb.String(), "\r\n")
}

// body asks the registry for content. A panicking or missing renderer
// degrades to an inline error block; the loop must survive bad producers.
func (e *Engine) body(f Frame, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = line(styles.ErrorText(fmt.Sprintf("render failed: %v", r)), width)
			out = strings.TrimSuffix(out, "\r\n")
		}
	}()

	entry, ok := e.reg.Lookup(f.State.Mode, f.State.Env)
	if !ok || entry.Render == nil {
		return styles.Dim(fmt.Sprintf("no content for %s/%s", f.State.Mode, f.State.Env))
	}
	text := entry.Render(registry.Context{
		Env:   f.State.Env,
		Mode:  f.State.Mode,
		Item:  f.State.Item,
		Drill: f.State.Drill,
		Width: width,
	})

	var sb strings.Builder
	for _, l := range strings.Split(wordwrap.String(text, width), "\n") {
		sb.WriteString(line(l, width))
	}
	return strings.TrimSuffix(sb.String(), "\r\n")
}

func (e *Engine) footer(f Frame, width int) string {
	var sb strings.Builder
	sb.WriteString(line(styles.Divider(width), width))

	actions := e.reg.ActionsFor(f.State.Mode, f.State.Env, f.State.Item)
	if len(actions) > 0 {
		labels := make([]string, len(actions))
		for i, a := range actions {
			labels[i] = a.Label
		}
		sb.WriteString(line(styles.Dim("x: "+strings.Join(labels, " | ")), width))
	}

	if f.Hint != "" {
		sb.WriteString(line(styles.Hint(f.Hint), width))
	}
	sb.WriteString(line(styles.Dim("?: help   /: commands   q: quit"), width))
	return strings.TrimSuffix(sb.String(), "\r\n")
}

// line truncates to the terminal width (ANSI-aware) and terminates with the
// CR+LF a raw-mode terminal needs.
func line(text string, width int) string {
	return truncate.String(text, uint(width)) + "\r\n"
}
