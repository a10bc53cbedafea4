// Package modal implements blocking overlay dialogs. A modal owns the input
// loop while visible, always times out, and always restores the dashboard
// frame when it closes. Only one modal can be active at a time; a nested
// Show fails fast instead of stacking.
package modal

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"tview/internal/term"
	"tview/internal/tui/theme"
)

// Kind selects the dialog's footer and key handling.
type Kind int

const (
	Generic Kind = iota
	Help
	Confirm
	Error
	Editor
)

// Result is how a modal closed.
type Result int

const (
	Dismissed Result = iota
	Confirmed
	Declined
	TimedOut
)

// ErrModalActive is returned when Show is called while a modal is open.
var ErrModalActive = errors.New("modal: another modal is active")

// Per-kind input-loop timeouts. Confirm is shorter: an unanswered
// destructive prompt should default to no quickly.
const (
	defaultTimeout = 30 * time.Second
	confirmTimeout = 15 * time.Second
)

// KeyReader supplies keys to the modal loop. *term.Screen satisfies it;
// tests use scripted fakes.
type KeyReader interface {
	ReadKey(timeout time.Duration) (term.Key, error)
}

// Surface is the screen side the modal needs: raw writes while open, and a
// dashboard restore when it closes. The render engine provides Restore.
type Surface interface {
	Clear()
	Write(text string)
	Size() (width, height int)
}

// Modal describes one dialog.
type Modal struct {
	Kind  Kind
	Title string
	Body  string
	// Timeout overrides the kind's default when positive.
	Timeout time.Duration
}

// Manager serializes modal display and owns the restore path.
type Manager struct {
	surface Surface
	keys    KeyReader
	restore func()

	active bool
}

// NewManager builds a manager. restore is invoked exactly once per Show,
// after the modal closes for any reason.
func NewManager(surface Surface, keys KeyReader, restore func()) *Manager {
	return &Manager{surface: surface, keys: keys, restore: restore}
}

// Active reports whether a modal currently owns the input loop.
func (m *Manager) Active() bool { return m.active }

// Show draws the modal and blocks in its input loop until a key closes it
// or the timeout lapses. The dashboard is restored before Show returns.
func (m *Manager) Show(d Modal) (Result, error) {
	if m.active {
		return Dismissed, ErrModalActive
	}
	m.active = true
	defer func() {
		m.active = false
		if m.restore != nil {
			m.restore()
		}
	}()

	m.draw(d)

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
		if d.Kind == Confirm {
			timeout = confirmTimeout
		}
	}
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return timeoutResult(d.Kind), nil
		}
		k, err := m.keys.ReadKey(remaining)
		if errors.Is(err, term.ErrReadTimeout) {
			continue
		}
		if err != nil {
			return timeoutResult(d.Kind), err
		}
		if res, done := dispatch(d.Kind, k); done {
			return res, nil
		}
	}
}

// timeoutResult maps a lapsed timer to the kind's safe default.
func timeoutResult(kind Kind) Result {
	if kind == Confirm {
		return Declined
	}
	return TimedOut
}

// dispatch decides whether a key closes the modal and with what result.
func dispatch(kind Kind, k term.Key) (Result, bool) {
	switch kind {
	case Confirm:
		switch {
		case k.Is('y'), k.Is('Y'):
			return Confirmed, true
		case k.Is('n'), k.Is('N'), k.Type == term.KeyEsc, k.Type == term.KeyEnter:
			return Declined, true
		}
		return Dismissed, false
	case Editor:
		// The editor view stays open across navigation keys, including
		// enter; only an explicit close key dismisses it.
		switch {
		case k.Is('q'), k.Type == term.KeyEsc:
			return Dismissed, true
		}
		return Dismissed, false
	default:
		// Help, Error, Generic close on any key.
		return Dismissed, true
	}
}

func (m *Manager) draw(d Modal) {
	width, height := m.surface.Size()

	boxWidth := width - 8
	if boxWidth > 72 {
		boxWidth = 72
	}
	if boxWidth < 20 {
		boxWidth = 20
	}

	t := theme.Current()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent(d.Kind, t))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent(d.Kind, t)).
		Padding(0, 2).
		Width(boxWidth)

	body := wordwrap.String(d.Body, boxWidth-4)
	content := titleStyle.Render(d.Title) + "\n\n" + body + "\n\n" +
		lipgloss.NewStyle().Foreground(t.Overlay).Render(footer(d.Kind))

	rendered := box.Render(content)
	lines := strings.Split(rendered, "\n")

	top := (height - len(lines)) / 2
	if top < 0 {
		top = 0
	}
	left := (width - lipgloss.Width(rendered)) / 2
	if left < 0 {
		left = 0
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("\r\n", top))
	pad := strings.Repeat(" ", left)
	for _, l := range lines {
		sb.WriteString(pad)
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}

	m.surface.Clear()
	m.surface.Write(sb.String())
}

func accent(kind Kind, t theme.Theme) lipgloss.Color {
	switch kind {
	case Error:
		return t.Error
	case Confirm:
		return t.Warning
	default:
		return t.Primary
	}
}

func footer(kind Kind) string {
	switch kind {
	case Confirm:
		return "y confirm   n/esc cancel"
	case Editor:
		return "q/esc close"
	default:
		return "any key to close"
	}
}
