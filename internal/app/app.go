// Package app wires the dashboard together: screen, navigation, registry,
// render engine, modal overlays, background cache, execution table and the
// command-line router. Run owns the foreground loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tview/internal/cache"
	"tview/internal/config"
	"tview/internal/keymap"
	"tview/internal/modal"
	"tview/internal/modes"
	"tview/internal/nav"
	"tview/internal/org"
	"tview/internal/picker"
	"tview/internal/probe"
	"tview/internal/rcm"
	"tview/internal/registry"
	"tview/internal/render"
	"tview/internal/repl"
	"tview/internal/term"
	"tview/internal/watcher"
)

// ambientTimeout is the foreground read timeout. It is what lets background
// publishes surface without a keystroke.
const ambientTimeout = 500 * time.Millisecond

// execRetention is how long settled execution slots stay visible.
const execRetention = 10 * time.Minute

// App is the assembled dashboard.
type App struct {
	dataDir string

	cfgMu   sync.RWMutex
	cfg     *config.Config
	cfgPath string

	screen  *term.Screen
	machine *nav.Machine
	reg     *registry.Registry
	engine  *render.Engine
	modals  *modal.Manager
	execs   *rcm.Table
	store   *cache.Store
	manager *cache.Manager
	router  *repl.Router
	orgs    *org.Store
	watch   *watcher.Watcher
	facts   *modes.Facts

	// reloadPending is set by the watcher goroutine and drained by the
	// foreground loop, which performs the actual reload. Background code
	// never touches the navigation machine.
	reloadPending atomic.Bool

	hintMu    sync.Mutex
	hint      string
	hintTimer *time.Timer

	inputEvents int
	lastSweep   time.Time

	debug *log.Logger
}

// New assembles the dashboard for the given data directory. The screen is
// not opened until Run.
func New(dataDir string) (*App, error) {
	cfgPath := config.Path(dataDir)
	cfg, _, err := config.Load(cfgPath)
	if err != nil {
		// A malformed file still runs the dashboard; the CONFIG mode shows
		// the raw view with the syntax error flagged.
		cfg = config.Default()
	}

	store, err := cache.NewStore(config.CacheDir(dataDir))
	if err != nil {
		return nil, err
	}

	a := &App{
		dataDir: dataDir,
		cfg:     cfg,
		cfgPath: cfgPath,
		execs:   rcm.NewTable(),
		store:   store,
		orgs:    org.NewStore(config.OrgsDir(dataDir), config.ActiveOrgPath(dataDir)),
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	poll := time.Duration(cfg.Cache.PollSeconds) * time.Second
	a.manager = cache.NewManager(store, poll, probe.ForConfig(cfg, ttl))

	a.facts = modes.NewFacts(cfgPath, dataDir)

	a.reg = registry.New()
	modes.Register(a.reg, modes.Deps{
		Config:     a.snapshot,
		ConfigPath: cfgPath,
		DataDir:    dataDir,
		Cache:      store,
		Exec:       a.execs,
		Orgs:       a.orgs,
		Facts:      a.facts,
		PickOrg:    a.pickOrg,
		Confirm:    a.confirm,
		Edit:       a.editFile,
		ShowText:   a.showText,
	})
	a.reg.Seal()

	a.machine = nav.NewMachine(a.reg)
	a.router = repl.NewRouter()
	a.router.SetStatus(a.contextSummary)
	a.registerREPLModules()
	return a, nil
}

// EnableDebug routes diagnostics to a log file under the cache dir. The
// managed screen never sees them.
func (a *App) EnableDebug() error {
	path := filepath.Join(config.CacheDir(a.dataDir), "tview.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("app: opening debug log: %w", err)
	}
	a.debug = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	a.debug.Println("debug logging enabled")
	return nil
}

func (a *App) logf(format string, args ...any) {
	if a.debug != nil {
		a.debug.Printf(format, args...)
	}
}

func (a *App) snapshot() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// scheduleReload is the watcher callback. It only marks the reload; the
// foreground loop performs it, so the navigation machine stays
// single-goroutine.
func (a *App) scheduleReload() {
	a.reloadPending.Store(true)
}

// reloadConfig re-reads the file after a watcher event. Runs on the
// foreground loop only. Probes are rebuilt on the next manager cycle only
// via restart, so we swap the snapshot and leave the manager alone;
// reachability targets rarely change mid-session.
func (a *App) reloadConfig() {
	cfg, _, err := config.Load(a.cfgPath)
	if err != nil {
		a.logf("config reload failed: %v", err)
		a.setHint("config reloaded with syntax errors")
		return
	}
	a.logf("config reloaded from %s", a.cfgPath)
	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()
	a.facts.Refresh()
	a.machine.Clamp()
	a.engine.Invalidate()
	a.setHint("config reloaded")
}

// Run opens the screen and drives the foreground loop until quit.
func (a *App) Run() error {
	screen, err := term.Open()
	if err != nil {
		return err
	}
	a.screen = screen
	defer screen.Close()

	a.attachEngine(screen)
	a.modals = modal.NewManager(screen, screen, func() {
		a.engine.Redraw()
		a.engine.Invalidate()
	})

	a.manager.Start()
	defer a.manager.Stop()

	if w, err := watcher.Watch(a.cfgPath, a.scheduleReload); err == nil {
		a.watch = w
		defer w.Close()
	}

	for {
		a.housekeep()
		a.renderFrame()

		k, err := screen.ReadKey(ambientTimeout)
		if err == term.ErrReadTimeout {
			continue
		}
		if err != nil {
			return err
		}

		a.inputEvents++
		if quit := a.dispatch(k); quit {
			return nil
		}
	}
}

// attachEngine builds the render engine over the sink and wires execution
// state changes into frame invalidation, so a command settling redraws on
// the next tick instead of waiting for a keystroke.
func (a *App) attachEngine(sink render.Sink) {
	a.engine = render.New(sink, a.reg)
	a.execs.OnChange(a.engine.Invalidate)
}

func (a *App) renderFrame() {
	width, height := a.screen.Size()
	activeOrg := a.snapshot().Org
	if activeOrg == "" {
		activeOrg, _ = a.orgs.Active()
	}
	a.engine.Render(render.Frame{
		State:  a.machine.State(),
		Org:    activeOrg,
		Hint:   a.currentHint(),
		Width:  width,
		Height: height,
	})
}

// housekeep drains the pending reload, runs the periodic refresh counters
// and the execution sweep. Foreground loop only.
func (a *App) housekeep() {
	if a.reloadPending.Swap(false) {
		a.reloadConfig()
	}
	cfg := a.snapshot()
	if cfg.UI.RefreshEvery > 0 && a.inputEvents > 0 && a.inputEvents%cfg.UI.RefreshEvery == 0 {
		a.facts.Refresh()
		a.engine.Invalidate()
	}
	if cfg.UI.SSHRefreshEvery > 0 && a.inputEvents > 0 && a.inputEvents%cfg.UI.SSHRefreshEvery == 0 {
		go a.manager.ForceRefresh(context.Background())
	}
	if time.Since(a.lastSweep) > time.Minute {
		a.execs.Sweep(execRetention)
		a.lastSweep = time.Now()
	}
}

func (a *App) dispatch(k term.Key) (quit bool) {
	switch keymap.Lookup(k) {
	case keymap.ActQuit:
		return true
	case keymap.ActItemUp:
		a.machine.MoveItem(nav.Back)
	case keymap.ActItemDown:
		a.machine.MoveItem(nav.Forward)
	case keymap.ActEnvNext:
		a.machine.CycleEnvironment(nav.Forward)
	case keymap.ActEnvPrev:
		a.machine.CycleEnvironment(nav.Back)
	case keymap.ActModeNext:
		a.machine.CycleMode(nav.Forward)
	case keymap.ActModePrev:
		a.machine.CycleMode(nav.Back)
	case keymap.ActDrillIn:
		a.drillIn()
	case keymap.ActDrillOut:
		a.machine.DrillOut()
	case keymap.ActRunAction:
		a.runAction()
	case keymap.ActCancelCommand:
		if n := a.execs.CancelAll(); n > 0 {
			a.setHint(fmt.Sprintf("cancelled %d command(s)", n))
		}
	case keymap.ActToggleExpand:
		a.toggleExpand()
	case keymap.ActRefresh:
		a.facts.Refresh()
		a.machine.Clamp()
		a.engine.Invalidate()
	case keymap.ActForceRefresh:
		a.setHint("refreshing cached facts")
		go a.manager.ForceRefresh(context.Background())
	case keymap.ActHelp:
		a.showModal(modal.Modal{Kind: modal.Help, Title: "Keys", Body: keymap.HelpText()})
	case keymap.ActEnterREPL:
		a.enterREPL()
	}
	return false
}

func (a *App) drillIn() {
	st := a.machine.State()
	hook := a.reg.DrillFor(st.Mode, st.Env)
	err := a.machine.DrillIn(func(s nav.State) error {
		if hook == nil {
			return nil
		}
		return hook(s.Env, s.Item)
	})
	if err != nil {
		a.showModal(modal.Modal{Kind: modal.Error, Title: "Error", Body: err.Error()})
	}
}

// runAction executes the first offered action on the selection. Finer
// control lives in the command line.
func (a *App) runAction() {
	st := a.machine.State()
	actions := a.reg.ActionsFor(st.Mode, st.Env, st.Item)
	if len(actions) == 0 {
		a.setHint("no actions here")
		return
	}
	run := a.reg.RunFor(st.Mode, st.Env)
	if run == nil {
		a.setHint("no actions here")
		return
	}
	a.logf("action %s on %s/%s item %d", actions[0].ID, st.Mode, st.Env, st.Item)
	if err := run(st.Env, st.Item, actions[0].ID); err != nil {
		a.logf("action %s failed: %v", actions[0].ID, err)
		a.showModal(modal.Modal{Kind: modal.Error, Title: "Action failed", Body: err.Error()})
		return
	}
	a.setHint(actions[0].Label)
}

// toggleExpand flips output expansion for every slot belonging to the
// current environment.
func (a *App) toggleExpand() {
	envKey := a.machine.State().Env.ConfigKey()
	for _, e := range a.execs.Snapshot() {
		if strings.Contains(e.ID, "/"+envKey+"/") || strings.HasSuffix(e.ID, "/"+envKey) {
			_ = a.execs.ToggleExpanded(e.ID)
		}
	}
}

func (a *App) showModal(m modal.Modal) {
	if _, err := a.modals.Show(m); err == modal.ErrModalActive {
		// Fail fast rather than stack; the active modal keeps the loop.
		return
	}
}

// confirm is the modes' confirmation hook.
func (a *App) confirm(title, body string) (bool, error) {
	res, err := a.modals.Show(modal.Modal{Kind: modal.Confirm, Title: title, Body: body})
	if err != nil {
		return false, err
	}
	return res == modal.Confirmed, nil
}

// editFile suspends the dashboard and opens the file in $EDITOR, then
// reloads the config snapshot since that is the only file we edit.
func (a *App) editFile(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	err := a.screen.Suspend(func() error {
		cmd := exec.Command("/bin/sh", "-c", editor+" "+path)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	})
	a.reloadConfig()
	a.engine.Invalidate()
	return err
}

// showText displays a text overlay that stays open across navigation keys.
func (a *App) showText(title, body string) error {
	_, err := a.modals.Show(modal.Modal{Kind: modal.Editor, Title: title, Body: body})
	return err
}

// pickOrg suspends the dashboard, runs the full-screen selector and
// activates the chosen org.
func (a *App) pickOrg() error {
	orgs, err := a.orgs.List()
	if err != nil {
		return err
	}
	active, _ := a.orgs.Active()

	var chosen string
	err = a.screen.Suspend(func() error {
		var pickErr error
		chosen, pickErr = picker.Run(orgs, active)
		return pickErr
	})
	a.engine.Invalidate()
	if err != nil {
		return err
	}
	if chosen == "" || chosen == active {
		return nil
	}
	if err := a.orgs.SetActive(chosen); err != nil {
		return err
	}
	a.setHint("active org: " + chosen)
	return nil
}

// setHint shows a transient hint; a new hint replaces the previous one and
// restarts the clock.
func (a *App) setHint(text string) {
	secs := a.snapshot().UI.HintSeconds
	if secs <= 0 {
		secs = 4
	}
	a.hintMu.Lock()
	defer a.hintMu.Unlock()
	if a.hintTimer != nil {
		a.hintTimer.Stop()
	}
	a.hint = text
	a.hintTimer = time.AfterFunc(time.Duration(secs)*time.Second, func() {
		a.hintMu.Lock()
		a.hint = ""
		a.hintMu.Unlock()
	})
}

func (a *App) currentHint() string {
	a.hintMu.Lock()
	defer a.hintMu.Unlock()
	return a.hint
}

// contextSummary is the router's empty-line summary: current position plus
// the cheap cached status for it. Reads only the cache, never the network.
func (a *App) contextSummary() string {
	st := a.machine.State()
	line := st.Env.String() + " / " + st.Mode.String()
	if st.Env.Remote() {
		line += "   ssh " + a.store.Value(probe.SSHKey(st.Env.ConfigKey()))
	}
	if running, last := a.manager.Status(); running && !last.IsZero() {
		line += "   cache swept " + time.Since(last).Round(time.Second).String() + " ago"
	}
	return line
}

// RunREPL runs the command line directly on the process stdio, without the
// dashboard screen. Used by `tview repl` and non-tty invocations.
func (a *App) RunREPL() error {
	a.machine.SetInteraction(nav.REPL)
	a.manager.Start()
	defer a.manager.Stop()
	return a.replLoop(os.Stdin, os.Stdout)
}

// enterREPL suspends the screen and runs the line loop until /exit.
func (a *App) enterREPL() {
	a.machine.SetInteraction(nav.REPL)
	_ = a.screen.Suspend(func() error {
		return a.replLoop(os.Stdin, os.Stdout)
	})
	a.machine.SetInteraction(nav.Gamepad)
	a.engine.Invalidate()
}

func (a *App) replLoop(in *os.File, out *os.File) error {
	fmt.Fprintln(out, "tview command line; /help for commands, /exit to return")
	scanner := bufio.NewScanner(in)
	for {
		prompt := "tview"
		if ctx := a.router.Context(); ctx != "" {
			prompt += ":" + ctx
		}
		fmt.Fprintf(out, "%s> ", prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		output, exit, err := a.router.Eval(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		if output != "" {
			fmt.Fprintln(out, output)
		}
		if exit {
			return nil
		}
	}
}
