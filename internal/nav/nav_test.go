package nav

import "testing"

func fixedBounds(n int) Bounds {
	return BoundsFunc(func(Mode, Environment) int { return n })
}

func TestCycleEnvironmentClosure(t *testing.T) {
	for _, start := range Environments {
		m := NewMachine(fixedBounds(3))
		m.state.Env = start
		for i := 0; i < len(Environments); i++ {
			m.CycleEnvironment(Forward)
		}
		if got := m.State().Env; got != start {
			t.Errorf("cycling %d times from %s: got %s, want %s", len(Environments), start, got, start)
		}
	}
}

func TestCycleEnvironmentWrapsBothWays(t *testing.T) {
	m := NewMachine(fixedBounds(3))
	m.state.Env = EnvQA // last
	m.CycleEnvironment(Forward)
	if got := m.State().Env; got != EnvTetra {
		t.Errorf("forward from QA = %s, want TETRA", got)
	}
	m.CycleEnvironment(Back)
	if got := m.State().Env; got != EnvQA {
		t.Errorf("back from TETRA = %s, want QA", got)
	}
}

func TestCycleResetsSelectionAndDrill(t *testing.T) {
	m := NewMachine(fixedBounds(5))
	m.MoveItem(Forward)
	m.MoveItem(Forward)
	if err := m.DrillIn(nil); err != nil {
		t.Fatalf("DrillIn: %v", err)
	}

	m.CycleMode(Forward)
	s := m.State()
	if s.Item != 0 || s.Drill != DrillOverview {
		t.Errorf("after CycleMode: item=%d drill=%d, want 0/0", s.Item, s.Drill)
	}

	m.MoveItem(Forward)
	m.CycleEnvironment(Back)
	s = m.State()
	if s.Item != 0 || s.Drill != DrillOverview {
		t.Errorf("after CycleEnvironment: item=%d drill=%d, want 0/0", s.Item, s.Drill)
	}
}

func TestMoveItemWraps(t *testing.T) {
	m := NewMachine(fixedBounds(4))
	m.state.Item = 3
	m.MoveItem(Forward)
	if got := m.State().Item; got != 0 {
		t.Errorf("move down from last item = %d, want 0 (wrap)", got)
	}
	m.MoveItem(Back)
	if got := m.State().Item; got != 3 {
		t.Errorf("move up from first item = %d, want 3 (wrap)", got)
	}
}

func TestMoveItemNoopOnShortLists(t *testing.T) {
	for _, count := range []int{0, 1} {
		m := NewMachine(fixedBounds(count))
		m.MoveItem(Forward)
		if got := m.State().Item; got != 0 {
			t.Errorf("count=%d: item = %d, want 0", count, got)
		}
	}
}

func TestDrillInOutIdempotence(t *testing.T) {
	m := NewMachine(fixedBounds(2))
	if err := m.DrillIn(nil); err != nil {
		t.Fatalf("DrillIn: %v", err)
	}
	if got := m.State().Drill; got != DrillDetail {
		t.Fatalf("drill after DrillIn = %d, want %d", got, DrillDetail)
	}

	// Second DrillIn is a no-op: the hook must not fire again.
	calls := 0
	if err := m.DrillIn(func(State) error { calls++; return nil }); err != nil {
		t.Fatalf("DrillIn: %v", err)
	}
	if calls != 0 {
		t.Errorf("hook fired %d times at detail level, want 0", calls)
	}

	m.DrillOut()
	if got := m.State().Drill; got != DrillOverview {
		t.Fatalf("drill after DrillOut = %d, want %d", got, DrillOverview)
	}
	// Repeated DrillOut at overview is a no-op.
	m.DrillOut()
	m.DrillOut()
	if got := m.State().Drill; got != DrillOverview {
		t.Errorf("drill after repeated DrillOut = %d, want %d", got, DrillOverview)
	}
}

func TestDrillHookRunsBeforeLevelChange(t *testing.T) {
	m := NewMachine(fixedBounds(2))
	var seen State
	if err := m.DrillIn(func(s State) error { seen = s; return nil }); err != nil {
		t.Fatalf("DrillIn: %v", err)
	}
	if seen.Drill != DrillOverview {
		t.Errorf("hook saw drill=%d, want overview", seen.Drill)
	}
}

func TestClampAfterShrink(t *testing.T) {
	count := 5
	m := NewMachine(BoundsFunc(func(Mode, Environment) int { return count }))
	m.state.Item = 4

	count = 2
	m.Clamp()
	if got := m.State().Item; got != 1 {
		t.Errorf("clamped item = %d, want 1", got)
	}

	count = 0
	m.Clamp()
	if got := m.State().Item; got != 0 {
		t.Errorf("clamped item with empty list = %d, want 0", got)
	}
}

func TestMoveItemClampsStaleSelection(t *testing.T) {
	count := 6
	m := NewMachine(BoundsFunc(func(Mode, Environment) int { return count }))
	m.state.Item = 5
	count = 3
	m.MoveItem(Forward)
	if got := m.State().Item; got >= 3 {
		t.Errorf("item = %d after shrink, want < 3", got)
	}
}

func TestToggleInteraction(t *testing.T) {
	m := NewMachine(fixedBounds(1))
	if m.State().Interaction != Gamepad {
		t.Fatal("default interaction should be gamepad")
	}
	m.ToggleInteraction()
	if m.State().Interaction != REPL {
		t.Error("first toggle should enter REPL")
	}
	m.ToggleInteraction()
	if m.State().Interaction != Gamepad {
		t.Error("second toggle should return to gamepad")
	}
}
