package keymap

import (
	"strings"
	"testing"

	"tview/internal/term"
)

func TestNoKeyBoundTwice(t *testing.T) {
	seen := map[term.Key]Action{}
	for _, b := range Bindings {
		for _, k := range b.Keys {
			if prev, dup := seen[k]; dup {
				t.Errorf("key %v bound to both action %d and %d", k, prev, b.Action)
			}
			seen[k] = b.Action
		}
	}
}

func TestEveryActionHasABinding(t *testing.T) {
	bound := map[Action]bool{}
	for _, b := range Bindings {
		bound[b.Action] = true
	}
	for a := ActItemUp; a <= ActQuit; a++ {
		if !bound[a] {
			t.Errorf("action %d has no binding", a)
		}
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		key  term.Key
		want Action
	}{
		{term.Rune('w'), ActItemUp},
		{term.Named(term.KeyDown), ActItemDown},
		{term.Rune('e'), ActEnvNext},
		{term.Rune('E'), ActEnvPrev},
		{term.Named(term.KeyEnter), ActDrillIn},
		{term.Named(term.KeyEsc), ActDrillOut},
		{term.Rune('/'), ActEnterREPL},
		{term.Rune('q'), ActQuit},
		{term.Rune('z'), ActNone},
	}
	for _, tc := range cases {
		if got := Lookup(tc.key); got != tc.want {
			t.Errorf("Lookup(%v) = %d, want %d", tc.key, got, tc.want)
		}
	}
}

func TestHelpTextListsEveryBinding(t *testing.T) {
	text := HelpText()
	for _, b := range Bindings {
		if !strings.Contains(text, b.Label) {
			t.Errorf("help text missing label %q", b.Label)
		}
	}
}
