package term

import "fmt"

// KeyType identifies the class of a decoded keypress.
type KeyType int

const (
	// KeyRune is a printable character; Key.Rune holds it.
	KeyRune KeyType = iota
	KeyEnter
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyTab
	KeyCtrlC
)

// Key is one decoded keypress from the gamepad input loop.
type Key struct {
	Type KeyType
	Rune rune
}

// Is reports whether the key is the given printable rune.
func (k Key) Is(r rune) bool { return k.Type == KeyRune && k.Rune == r }

// String renders the key for diagnostics and help text.
func (k Key) String() string {
	switch k.Type {
	case KeyEnter:
		return "enter"
	case KeyEsc:
		return "esc"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyBackspace:
		return "backspace"
	case KeyTab:
		return "tab"
	case KeyCtrlC:
		return "ctrl+c"
	default:
		return fmt.Sprintf("%c", k.Rune)
	}
}

// Rune returns a printable-rune key, a convenience for tables and tests.
func Rune(r rune) Key { return Key{Type: KeyRune, Rune: r} }

// Named returns a non-rune key.
func Named(t KeyType) Key { return Key{Type: t} }
