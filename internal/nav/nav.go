// Package nav owns the hierarchical navigation state: environment, mode,
// selected item, drill level and interaction mode. All transitions are total
// functions; out-of-range selections are clamped, never left dangling.
package nav

// Environment is one of the operating targets the dashboard cycles through.
type Environment int

const (
	// EnvTetra is the overview pseudo-environment.
	EnvTetra Environment = iota
	EnvLocal
	EnvDev
	EnvStaging
	EnvProd
	EnvQA
)

// Environments is the canonical cycle order.
var Environments = []Environment{EnvTetra, EnvLocal, EnvDev, EnvStaging, EnvProd, EnvQA}

// String returns the display name of the environment.
func (e Environment) String() string {
	switch e {
	case EnvTetra:
		return "TETRA"
	case EnvLocal:
		return "LOCAL"
	case EnvDev:
		return "DEV"
	case EnvStaging:
		return "STAGING"
	case EnvProd:
		return "PROD"
	case EnvQA:
		return "QA"
	default:
		return "UNKNOWN"
	}
}

// ConfigKey returns the lowercase key used for this environment in the
// config file and cache entries.
func (e Environment) ConfigKey() string {
	switch e {
	case EnvTetra:
		return "tetra"
	case EnvLocal:
		return "local"
	case EnvDev:
		return "dev"
	case EnvStaging:
		return "staging"
	case EnvProd:
		return "prod"
	case EnvQA:
		return "qa"
	default:
		return "unknown"
	}
}

// Remote reports whether the environment lives on a remote host.
func (e Environment) Remote() bool {
	switch e {
	case EnvDev, EnvStaging, EnvProd, EnvQA:
		return true
	default:
		return false
	}
}

// Mode is the vertical axis: which facet of the environment is shown.
type Mode int

const (
	ModeConfig Mode = iota
	ModeKeys
	ModeServices
	ModeDeploy
	ModeOrg
	ModeRemote
)

// Modes is the canonical cycle order.
var Modes = []Mode{ModeConfig, ModeKeys, ModeServices, ModeDeploy, ModeOrg, ModeRemote}

// String returns the display name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeConfig:
		return "CONFIG"
	case ModeKeys:
		return "KEYS"
	case ModeServices:
		return "SERVICES"
	case ModeDeploy:
		return "DEPLOY"
	case ModeOrg:
		return "ORG"
	case ModeRemote:
		return "REMOTE"
	default:
		return "UNKNOWN"
	}
}

// InteractionMode selects between single-key gamepad input and line REPL input.
type InteractionMode int

const (
	Gamepad InteractionMode = iota
	REPL
)

// Direction for cyclic and item movement operations.
type Direction int

const (
	Forward Direction = 1
	Back    Direction = -1
)

// DrillLevel: 0 = overview of (mode, environment), 1 = detail view of the
// selected item. No deeper nesting.
const (
	DrillOverview = 0
	DrillDetail   = 1
)

// State is the full navigation position. It is a plain value so tests can
// construct and compare positions directly.
type State struct {
	Env         Environment
	Mode        Mode
	Item        int
	Drill       int
	Interaction InteractionMode
}

// Bounds reports the item count for a (mode, environment) pair. The content
// registry satisfies this; tests supply fakes.
type Bounds interface {
	ItemCount(m Mode, e Environment) int
}

// BoundsFunc adapts a function to the Bounds interface.
type BoundsFunc func(m Mode, e Environment) int

func (f BoundsFunc) ItemCount(m Mode, e Environment) int { return f(m, e) }

// DrillHook is invoked by DrillIn before the drill level changes. It is the
// registry's side-effecting callout (open an SSH session, run an editor).
// A nil hook or a hook error leaves the state drilled regardless; errors are
// surfaced to the caller for display, not treated as transition failures.
type DrillHook func(s State) error

// Machine applies navigation operations to a State under a Bounds.
type Machine struct {
	state  State
	bounds Bounds
}

// NewMachine returns a machine positioned at the defaults: TETRA overview,
// CONFIG mode, first item, gamepad interaction.
func NewMachine(b Bounds) *Machine {
	return &Machine{bounds: b}
}

// State returns a copy of the current navigation state.
func (n *Machine) State() State { return n.state }

// SetInteraction switches the interaction mode directly.
func (n *Machine) SetInteraction(im InteractionMode) { n.state.Interaction = im }

// ToggleInteraction flips between gamepad and REPL interaction.
func (n *Machine) ToggleInteraction() {
	if n.state.Interaction == Gamepad {
		n.state.Interaction = REPL
	} else {
		n.state.Interaction = Gamepad
	}
}

// CycleEnvironment moves to the next or previous environment, wrapping at
// the ends. Selection and drill reset to zero.
func (n *Machine) CycleEnvironment(d Direction) {
	idx := indexOfEnv(n.state.Env)
	idx = wrap(idx+int(d), len(Environments))
	n.state.Env = Environments[idx]
	n.state.Item = 0
	n.state.Drill = DrillOverview
}

// CycleMode moves to the next or previous mode, wrapping at the ends.
// Selection and drill reset to zero.
func (n *Machine) CycleMode(d Direction) {
	idx := indexOfMode(n.state.Mode)
	idx = wrap(idx+int(d), len(Modes))
	n.state.Mode = Modes[idx]
	n.state.Item = 0
	n.state.Drill = DrillOverview
}

// MoveItem moves the selection within the current item list, wrapping at the
// ends. It is a no-op when the list has one item or fewer.
func (n *Machine) MoveItem(d Direction) {
	count := n.itemCount()
	if count <= 1 {
		return
	}
	n.clampItem(count)
	n.state.Item = wrap(n.state.Item+int(d), count)
}

// DrillIn enters the detail view for the current selection. It is a no-op at
// detail level. The hook runs before the level changes; its error is
// returned for display but never blocks the transition.
func (n *Machine) DrillIn(hook DrillHook) error {
	if n.state.Drill != DrillOverview {
		return nil
	}
	n.clampItem(n.itemCount())
	var err error
	if hook != nil {
		err = hook(n.state)
	}
	n.state.Drill = DrillDetail
	return err
}

// DrillOut returns to the overview. It is a no-op at overview level, so
// repeated calls are harmless.
func (n *Machine) DrillOut() {
	n.state.Drill = DrillOverview
}

// Clamp repairs a selection that is out of range for the current bounds,
// e.g. after an item list shrinks between refreshes.
func (n *Machine) Clamp() {
	n.clampItem(n.itemCount())
}

func (n *Machine) itemCount() int {
	if n.bounds == nil {
		return 0
	}
	c := n.bounds.ItemCount(n.state.Mode, n.state.Env)
	if c < 0 {
		return 0
	}
	return c
}

func (n *Machine) clampItem(count int) {
	if count == 0 {
		n.state.Item = 0
		return
	}
	if n.state.Item >= count {
		n.state.Item = count - 1
	}
	if n.state.Item < 0 {
		n.state.Item = 0
	}
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func indexOfEnv(e Environment) int {
	for i, v := range Environments {
		if v == e {
			return i
		}
	}
	return 0
}

func indexOfMode(m Mode) int {
	for i, v := range Modes {
		if v == m {
			return i
		}
	}
	return 0
}
