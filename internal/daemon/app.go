package daemon

import (
	"fmt"
	"os"
	"time"

	"github.com/wzhd/kseqi/internal/action"
	"github.com/wzhd/kseqi/internal/config"
	"github.com/wzhd/kseqi/internal/device"
	"github.com/wzhd/kseqi/internal/dispatch"
	"github.com/wzhd/kseqi/internal/grab"
	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/keysymalloc"
	"github.com/wzhd/kseqi/internal/logging"
	"github.com/wzhd/kseqi/internal/matcher"
	"github.com/wzhd/kseqi/internal/x11"
)

// floatingWatchdog is spec.md §5's sanity-check interval: when a
// device is floating and no event has arrived for this long, the loop
// wakes up anyway so a missed event never leaves kseqi holding a grab
// indefinitely.
const floatingWatchdog = 1 * time.Second

// App owns every subsystem package's instance and runs the
// single-threaded event loop of spec.md §5 to completion.
type App struct {
	display    *x11.Display
	log        *logging.Logger
	bindings   *action.Binding
	inventory  *device.Inventory
	grab       *grab.Controller
	allocator  *keysymalloc.Allocator
	dispatcher *dispatch.Dispatcher
	matcher    *matcher.Matcher

	events  chan x11.Event
	readErr chan error
	signals chan os.Signal
}

// New opens the X11 display, loads the configuration file, and wires
// every subsystem together. It returns a start-up error wrapped with
// enough context to print and exit non-zero, per spec.md §6.
func New(logLevel logging.Level) (*App, error) {
	log := logging.New(logging.Config{Level: logLevel, Output: os.Stderr, Prefix: "kseqi"})

	display, err := x11.Open("")
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}

	bindings, err := loadBindings(display, log)
	if err != nil {
		display.Close()
		return nil, err
	}

	inv := device.New(deviceQuerier{display: display})
	if _, err := inv.Refresh(); err != nil {
		display.Close()
		return nil, fmt.Errorf("enumerating input devices: %w", err)
	}

	grabCtl := grab.New(display, log.WithComponent("grab"))
	allocator := keysymalloc.New(display, log.WithComponent("keysymalloc"))
	dispatcher := dispatch.New(display, allocator, dispatch.NewProcessSpawner(), log.WithComponent("dispatch"))
	m := matcher.New(
		bindings,
		modifierSet{display: display},
		grabCtl,
		dispatcher,
		residualKeys{display: display, log: log},
		display,
		log.WithComponent("matcher"),
	)

	app := &App{
		display:    display,
		log:        log,
		bindings:   bindings,
		inventory:  inv,
		grab:       grabCtl,
		allocator:  allocator,
		dispatcher: dispatcher,
		matcher:    m,
		events:     make(chan x11.Event, 64),
		readErr:    make(chan error, 1),
		signals:    make(chan os.Signal, 1),
	}

	if err := app.grabConfiguredKeys(); err != nil {
		app.shutdown()
		return nil, err
	}

	return app, nil
}

// loadBindings resolves the config path, bootstraps the bundled
// example if nothing exists yet, and parses+resolves it into a
// ready-to-use Binding map.
func loadBindings(display *x11.Display, log *logging.Logger) (*action.Binding, error) {
	fsys := config.DefaultFS()
	path := config.Path(os.Getenv)
	if err := config.EnsureExists(fsys, path); err != nil {
		return nil, fmt.Errorf("preparing config file %s: %w", path, err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	parsed, parseErrs := config.Parse(string(data))
	for _, pe := range parseErrs {
		log.Warn("config %s: %v", path, pe)
	}

	names := keyseq.NewNameResolver(display.KeysymFromName)
	resolver := config.NewResolver(names, display)
	resolved, resolveErrs := resolver.Resolve(parsed)
	for _, re := range resolveErrs {
		log.Warn("config %s: %v", path, re)
	}

	bindings := action.NewBinding()
	for _, rb := range resolved {
		if replaced, ok := bindings.Put(rb.Sequence, rb.Actions, rb.LeadModifiers); ok {
			log.Warn("config %s line %d: sequence redefined, replacing earlier binding %v", path, rb.Line, replaced)
		}
	}

	if bindings.Len() == 0 {
		log.Warn("config %s defines no usable bindings", path)
	}
	return bindings, nil
}

// grabConfiguredKeys requests a per-key passive grab, on every watched
// keyboard, for each (keycode, modifier mask) pair some binding starts
// with. spec.md §7 treats a failed required grab as fatal: "key <name>
// unavailable" aborts start-up rather than running in a half-working
// state the user cannot easily diagnose.
func (a *App) grabConfiguredKeys() error {
	grabs := a.bindings.GrabKeys()
	for _, kb := range a.inventory.Keyboards() {
		for _, g := range grabs {
			if err := a.display.GrabKey(kb.ID, byte(g.Keycode), uint32(g.Modifiers)); err != nil {
				return fmt.Errorf("key (code %d, device %q) unavailable: %w", g.Keycode, kb.Name, err)
			}
		}
	}
	return a.display.Sync()
}

// ungrabConfiguredKeys releases every per-key grab requested at
// start-up, best-effort, as part of shutdown.
func (a *App) ungrabConfiguredKeys() {
	grabs := a.bindings.GrabKeys()
	for _, kb := range a.inventory.Keyboards() {
		for _, g := range grabs {
			if err := a.display.UngrabKey(kb.ID, byte(g.Keycode), uint32(g.Modifiers)); err != nil {
				a.log.Warn("releasing key grab (code %d, device %q): %v", g.Keycode, kb.Name, err)
			}
		}
	}
}

// Run subscribes to raw key and hierarchy-change events and drives the
// event loop until a signal requests shutdown or the X11 connection
// fails. It returns nil on a clean, signalled shutdown.
func (a *App) Run() error {
	if err := a.display.SelectRawKeyEvents(); err != nil {
		return fmt.Errorf("subscribing to input events: %w", err)
	}
	a.watchSignals()

	go func() {
		for {
			ev, err := a.display.NextEvent()
			if err != nil {
				a.readErr <- err
				return
			}
			a.events <- ev
		}
	}()

	defer a.shutdown()

	for {
		wait := a.dispatcher.Step(time.Now())
		if _, floating := a.grab.Floating(); floating {
			if wait == nil || *wait > floatingWatchdog {
				w := floatingWatchdog
				wait = &w
			}
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if wait != nil {
			timer = time.NewTimer(*wait)
			timerC = timer.C
		}

		select {
		case <-a.signals:
			stopTimer(timer)
			a.log.Info("shutting down on signal")
			return nil

		case err := <-a.readErr:
			stopTimer(timer)
			return fmt.Errorf("X11 event stream ended: %w", err)

		case ev := <-a.events:
			stopTimer(timer)
			a.handleEvent(ev)

		case <-timerC:
			// Either the dispatcher has work ready, or this was the
			// floating-grab watchdog firing with nothing else pending;
			// both cases just loop back around to re-derive the wait.
		}
	}
}

func (a *App) handleEvent(ev x11.Event) {
	switch ev.Kind {
	case x11.EventRawKey:
		a.matcher.Handle(matcher.Event{DeviceID: ev.DeviceID, Keycode: ev.Keycode, Press: ev.Press})
	case x11.EventHierarchyChanged:
		a.handleHierarchyChange()
	}
}

// handleHierarchyChange re-enumerates devices and keeps per-key grabs
// in sync with what is actually plugged in: newly attached keyboards
// get the configured grabs, detached ones need no action since the
// server already dropped their grabs.
func (a *App) handleHierarchyChange() {
	diff, err := a.inventory.Refresh()
	if err != nil {
		a.log.Warn("refreshing device inventory: %v", err)
		return
	}
	if len(diff.Added) == 0 && len(diff.Removed) == 0 {
		return
	}

	grabs := a.bindings.GrabKeys()
	for _, kb := range diff.Added {
		a.log.Info("keyboard attached: %s (device %d)", kb.Name, kb.ID)
		for _, g := range grabs {
			if err := a.display.GrabKey(kb.ID, byte(g.Keycode), uint32(g.Modifiers)); err != nil {
				a.log.Warn("grabbing key on newly attached device %d: %v", kb.ID, err)
			}
		}
	}
	for _, kb := range diff.Removed {
		a.log.Info("keyboard detached: %s (device %d)", kb.Name, kb.ID)
	}
	a.allocator.OnDeviceChange()
}

// shutdown performs the drop-order cleanup of spec.md §5: release any
// floating grab, revert every mut_syms keycode mapping, then sync
// before the connection itself is torn down.
func (a *App) shutdown() {
	a.grab.ReleaseAll()
	a.ungrabConfiguredKeys()
	a.allocator.Close()
	if err := a.display.Sync(); err != nil {
		a.log.Warn("final sync before teardown: %v", err)
	}
	a.display.Close()
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
