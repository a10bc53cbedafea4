// Package keymap is the single authoritative table mapping physical keys to
// dashboard actions. Every consumer (gamepad loop, help modal, docs) reads
// this table; nothing else in the tree binds a key.
package keymap

import (
	"strings"

	"tview/internal/term"
)

// Action is a dashboard operation a key can trigger.
type Action int

const (
	ActNone Action = iota
	ActItemUp
	ActItemDown
	ActEnvNext
	ActEnvPrev
	ActModeNext
	ActModePrev
	ActDrillIn
	ActDrillOut
	ActRunAction
	ActCancelCommand
	ActToggleExpand
	ActRefresh
	ActForceRefresh
	ActHelp
	ActEnterREPL
	ActQuit
)

// Binding pairs the keys bound to an action with its help label.
type Binding struct {
	Action Action
	Keys   []term.Key
	Label  string
}

// Bindings is the canonical table, in help display order.
//
// The movement family is w/s plus the arrow keys; e/E cycles environments
// and m/M (plus left/right arrows) cycles modes.
var Bindings = []Binding{
	{ActItemUp, []term.Key{term.Rune('w'), term.Named(term.KeyUp)}, "move up"},
	{ActItemDown, []term.Key{term.Rune('s'), term.Named(term.KeyDown)}, "move down"},
	{ActEnvNext, []term.Key{term.Rune('e')}, "next environment"},
	{ActEnvPrev, []term.Key{term.Rune('E')}, "previous environment"},
	{ActModeNext, []term.Key{term.Rune('m'), term.Named(term.KeyRight)}, "next mode"},
	{ActModePrev, []term.Key{term.Rune('M'), term.Named(term.KeyLeft)}, "previous mode"},
	{ActDrillIn, []term.Key{term.Named(term.KeyEnter)}, "drill in"},
	{ActDrillOut, []term.Key{term.Named(term.KeyEsc)}, "drill out"},
	{ActRunAction, []term.Key{term.Rune('x')}, "run action"},
	{ActCancelCommand, []term.Key{term.Rune('c')}, "cancel command"},
	{ActToggleExpand, []term.Key{term.Rune('o')}, "toggle output"},
	{ActRefresh, []term.Key{term.Rune('r')}, "refresh"},
	{ActForceRefresh, []term.Key{term.Rune('R')}, "force cache refresh"},
	{ActHelp, []term.Key{term.Rune('?')}, "help"},
	{ActEnterREPL, []term.Key{term.Rune('/')}, "command line"},
	{ActQuit, []term.Key{term.Rune('q'), term.Named(term.KeyCtrlC)}, "quit"},
}

// Lookup resolves a key to its action, or ActNone.
func Lookup(k term.Key) Action {
	for _, b := range Bindings {
		for _, bk := range b.Keys {
			if bk == k {
				return b.Action
			}
		}
	}
	return ActNone
}

// HelpText renders the table for the help modal, one binding per line.
func HelpText() string {
	var sb strings.Builder
	for _, b := range Bindings {
		names := make([]string, len(b.Keys))
		for i, k := range b.Keys {
			names[i] = k.String()
		}
		sb.WriteString(strings.Join(names, "/"))
		sb.WriteString("  ")
		sb.WriteString(b.Label)
		sb.WriteString("\n")
	}
	return sb.String()
}
