// Package term is the terminal surface: raw mode, cursor and screen escape
// primitives, and single-key reads with a timeout. Everything visual in the
// dashboard goes through a Screen; nothing else touches the tty.
package term

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when stdin or stdout is not a terminal.
var ErrNotInteractive = errors.New("term: not an interactive terminal")

// ErrReadTimeout is returned by ReadKey when no key arrives in time.
var ErrReadTimeout = errors.New("term: read timed out")

// escFollowWait is how long after a bare ESC byte we wait for the rest of
// an escape sequence before treating it as the ESC key.
const escFollowWait = 50 * time.Millisecond

// Screen owns the tty for the lifetime of the dashboard.
type Screen struct {
	in      *os.File
	out     *termenv.Output
	restore *term.State
	keys    chan byte
	width   int
	height  int
}

// Open puts the terminal into raw mode, switches to the alternate screen
// and starts the key reader. Callers must arrange for Close.
func Open() (*Screen, error) {
	in := os.Stdin
	if !isatty.IsTerminal(in.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return nil, ErrNotInteractive
	}

	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("term: entering raw mode: %w", err)
	}

	s := &Screen{
		in:      in,
		out:     termenv.NewOutput(os.Stdout),
		restore: state,
		keys:    make(chan byte, 64),
	}
	s.refreshSize()

	s.out.AltScreen()
	s.out.HideCursor()
	s.out.ClearScreen()

	go s.readLoop()
	return s, nil
}

// Close restores the terminal. Safe to call once.
func (s *Screen) Close() {
	s.out.ShowCursor()
	s.out.ExitAltScreen()
	if s.restore != nil {
		_ = term.Restore(int(s.in.Fd()), s.restore)
		s.restore = nil
	}
}

// Suspend leaves raw mode and the alternate screen, runs fn with a normal
// cooked terminal (for the REPL and for sub-programs like the org picker),
// then re-enters the managed screen.
func (s *Screen) Suspend(fn func() error) error {
	s.out.ShowCursor()
	s.out.ExitAltScreen()
	if s.restore != nil {
		_ = term.Restore(int(s.in.Fd()), s.restore)
	}

	err := fn()

	state, rawErr := term.MakeRaw(int(s.in.Fd()))
	if rawErr == nil {
		s.restore = state
	}
	s.out.AltScreen()
	s.out.HideCursor()
	s.out.ClearScreen()
	s.refreshSize()
	return err
}

// Size returns the last known terminal dimensions.
func (s *Screen) Size() (width, height int) {
	s.refreshSize()
	return s.width, s.height
}

func (s *Screen) refreshSize() {
	w, h, err := term.GetSize(int(s.in.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		w, h = 80, 24
	}
	s.width, s.height = w, h
}

// Write sends raw text (possibly containing color sequences) to the screen.
func (s *Screen) Write(text string) {
	fmt.Fprint(s.out, text)
}

// Clear erases the screen and homes the cursor.
func (s *Screen) Clear() {
	s.out.ClearScreen()
	s.out.MoveCursor(1, 1)
}

// MoveCursor positions the cursor (1-based row and column).
func (s *Screen) MoveCursor(row, col int) {
	s.out.MoveCursor(row, col)
}

// ClearLine erases the current line.
func (s *Screen) ClearLine() {
	s.out.ClearLine()
}

// SaveScreen / RestoreScreen wrap the terminal's saved-screen pair. The
// modal subsystem uses the engine's frame snapshot for content restore, but
// these primitives stay available for callers that shell out.
func (s *Screen) SaveScreen()    { s.out.SaveScreen() }
func (s *Screen) RestoreScreen() { s.out.RestoreScreen() }

// readLoop pumps raw bytes from the tty into the key channel. It exits when
// the file closes at process shutdown.
func (s *Screen) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := s.in.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			s.keys <- buf[0]
		}
	}
}

// ReadKey blocks until a key arrives or the timeout passes. The timeout is
// what lets the foreground loop surface background cache publishes without
// a keystroke, and what bounds every modal input loop.
func (s *Screen) ReadKey(timeout time.Duration) (Key, error) {
	var b byte
	select {
	case b = <-s.keys:
	case <-time.After(timeout):
		return Key{}, ErrReadTimeout
	}
	return s.decode(b)
}

func (s *Screen) decode(b byte) (Key, error) {
	switch b {
	case 0x03:
		return Named(KeyCtrlC), nil
	case '\r', '\n':
		return Named(KeyEnter), nil
	case '\t':
		return Named(KeyTab), nil
	case 0x7f, 0x08:
		return Named(KeyBackspace), nil
	case 0x1b:
		return s.decodeEscape()
	}
	if b >= 0x20 {
		return Rune(rune(b)), nil
	}
	// Other control bytes are ignored; report as timeout-equivalent so the
	// caller just loops.
	return Key{}, ErrReadTimeout
}

// decodeEscape distinguishes a bare ESC keypress from CSI sequences
// (arrow keys). Anything unrecognized collapses to ESC.
func (s *Screen) decodeEscape() (Key, error) {
	var b byte
	select {
	case b = <-s.keys:
	case <-time.After(escFollowWait):
		return Named(KeyEsc), nil
	}
	if b != '[' && b != 'O' {
		return Named(KeyEsc), nil
	}
	select {
	case b = <-s.keys:
	case <-time.After(escFollowWait):
		return Named(KeyEsc), nil
	}
	switch b {
	case 'A':
		return Named(KeyUp), nil
	case 'B':
		return Named(KeyDown), nil
	case 'C':
		return Named(KeyRight), nil
	case 'D':
		return Named(KeyLeft), nil
	}
	return Named(KeyEsc), nil
}
