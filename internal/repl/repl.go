// Package repl routes command-line input. Lines starting with / address a
// module (and make it the sticky context for bare lines that follow);
// lines starting with ! escape to the shell; empty lines summarize the
// current context.
package repl

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Module is one routable command namespace.
type Module struct {
	Name    string
	Summary string
	// Handle receives the argument rest of the line (may be empty).
	Handle func(args string) (string, error)
}

// StatusFunc supplies the one-line context summary shown on empty input:
// current environment/mode plus whatever cheap status the host has cached.
// It must not block.
type StatusFunc func() string

// Router owns the module table and the sticky context.
type Router struct {
	modules map[string]Module
	context string
	status  StatusFunc

	// shell runs a ! escape; swapped in tests.
	shell func(cmd string) (string, error)
}

// NewRouter returns a router with the built-in /help, /modules and /exit
// commands and no context.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]Module),
		shell:   runShell,
	}
}

// Register adds a module. Later registrations with the same name replace
// earlier ones.
func (r *Router) Register(m Module) {
	r.modules[m.Name] = m
}

// Context returns the sticky module name, or "".
func (r *Router) Context() string { return r.context }

// SetStatus installs the context-summary callback.
func (r *Router) SetStatus(fn StatusFunc) { r.status = fn }

// Eval processes one input line. exit is true when the line asked to leave
// the REPL. Unroutable input comes back as a structured message, not an
// error; errors are reserved for handlers and the shell.
func (r *Router) Eval(line string) (output string, exit bool, err error) {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return r.summary(), false, nil
	case strings.HasPrefix(line, "!"):
		out, err := r.shell(strings.TrimSpace(line[1:]))
		return out, false, err
	case strings.HasPrefix(line, "/"):
		return r.slash(line[1:])
	}

	// Bare line: route to the sticky context.
	if r.context == "" {
		return "no module selected; try /modules", false, nil
	}
	m := r.modules[r.context]
	return r.invoke(m, line)
}

func (r *Router) slash(rest string) (string, bool, error) {
	name, args := splitWord(rest)
	switch name {
	case "exit", "quit", "q":
		return "", true, nil
	case "help", "":
		return r.help(), false, nil
	case "modules":
		return r.moduleList(), false, nil
	case "main":
		r.context = ""
		return "context cleared", false, nil
	}

	m, ok := r.modules[name]
	if !ok {
		return fmt.Sprintf("unknown module %q; try /modules", name), false, nil
	}
	r.context = name
	if args == "" {
		return fmt.Sprintf("context: %s", name), false, nil
	}
	return r.invoke(m, args)
}

func (r *Router) invoke(m Module, args string) (string, bool, error) {
	if m.Handle == nil {
		return fmt.Sprintf("module %q has no handler", m.Name), false, nil
	}
	out, err := m.Handle(args)
	return out, false, err
}

func (r *Router) summary() string {
	var sb strings.Builder
	if r.status != nil {
		sb.WriteString(r.status())
	}
	if r.context != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		m := r.modules[r.context]
		if m.Summary != "" {
			fmt.Fprintf(&sb, "%s: %s", m.Name, m.Summary)
		} else {
			sb.WriteString("context: " + r.context)
		}
	}
	if sb.Len() == 0 {
		return "no module selected; /help for commands"
	}
	return sb.String()
}

func (r *Router) help() string {
	var sb strings.Builder
	sb.WriteString("/<module> [args]  run or switch to a module\n")
	sb.WriteString("/modules          list modules\n")
	sb.WriteString("/main             leave the module context\n")
	sb.WriteString("!<command>        run a shell command\n")
	sb.WriteString("/exit             leave the command line\n")
	return sb.String()
}

func (r *Router) moduleList() string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		m := r.modules[name]
		marker := "  "
		if name == r.context {
			marker = "* "
		}
		sb.WriteString(marker)
		sb.WriteString(name)
		if m.Summary != "" {
			sb.WriteString("  ")
			sb.WriteString(m.Summary)
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "no modules registered"
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func runShell(cmd string) (string, error) {
	if cmd == "" {
		return "", nil
	}
	out, err := exec.Command("/bin/sh", "-c", cmd).CombinedOutput()
	text := strings.TrimRight(string(out), "\n")
	if err != nil {
		return text, fmt.Errorf("repl: shell: %w", err)
	}
	return text, nil
}
