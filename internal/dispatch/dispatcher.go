package dispatch

import (
	"time"

	"github.com/rivo/uniseg"

	"github.com/wzhd/kseqi/internal/action"
	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/keysymalloc"
	"github.com/wzhd/kseqi/internal/logging"
	"github.com/wzhd/kseqi/internal/matcher"
)

// Pacing constants, spec.md §4.3/§9: design-level constraints, not
// exact performance targets, kept as literal durations.
const (
	settleNewKeysym = 1 * time.Millisecond
	shiftPace       = 2 * time.Millisecond
	keyPressPace    = 5 * time.Millisecond
	keyReleasePace  = 12 * time.Millisecond
	mousePace       = 4 * time.Millisecond
	keyStrokeStep   = 2 * time.Millisecond
	replayPace      = 3 * time.Millisecond

	// replayQueueCap bounds a single passthrough run; spec.md §4.3
	// calls this "a deliberate safety valve against unbounded replays
	// when something went wrong."
	replayQueueCap = 8
)

// Display is the subset of internal/x11.Display the dispatcher needs
// to inject synthesized input.
type Display interface {
	SendKey(keycode byte, press bool) error
	SendButton(button byte, press bool) error
	ShiftKeycode() byte
}

// KeysymResolver is the subset of internal/keysymalloc.Allocator the
// dispatcher needs.
type KeysymResolver interface {
	FindSym(sym keyseq.Keysym) (keycode keyseq.Keycode, group keysymalloc.Group, err error)
}

// Spawner launches a detached external process for an Exec action.
type Spawner interface {
	Spawn(argv []string) error
}

// Dispatcher is the action dispatcher of spec.md §4.3.
type Dispatcher struct {
	display  Display
	keysyms  KeysymResolver
	spawner  Spawner
	log      *logging.Logger

	pending []action.Action
	replay  []matcher.Event
	running *runningAction
	lastList action.List

	resumeAt time.Time
}

// New creates a Dispatcher.
func New(display Display, keysyms KeysymResolver, spawner Spawner, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Null
	}
	return &Dispatcher{display: display, keysyms: keysyms, spawner: spawner, log: log}
}

// Enqueue adds a matched binding's action list to the pending queue,
// flattened to individual actions, and records it as the "last
// enqueued" list for a subsequent Repeat to replay. A Repeat action
// must be first-position and alone in its own binding's action list
// (spec.md §3); it is handled here at enqueue time rather than by the
// step loop.
func (d *Dispatcher) Enqueue(actions action.List) {
	if len(actions) == 1 && actions[0].Kind == action.KindRepeat {
		d.enqueueRepeat(actions[0].Count)
		return
	}

	for _, a := range actions {
		if a.Kind == action.KindRepeat {
			d.log.Warn("repeat action must be the sole action in its binding; ignoring")
			continue
		}
		d.pending = append(d.pending, a)
	}
	d.lastList = actions
}

func (d *Dispatcher) enqueueRepeat(n uint8) {
	if d.lastList == nil {
		d.log.Error("repeat action has no previous action-list to replay; ignoring")
		return
	}
	for i := 0; i < int(n); i++ {
		d.pending = append(d.pending, d.lastList...)
	}
}

// EnqueueReplay buffers an unmatched run's raw events, once it has
// fully ended, for paced pass-through replay (spec.md §4.1 step 2,
// the "Miss" case). Runs longer than replayQueueCap are dropped
// whole, with a warning (spec.md §4.3's safety valve).
func (d *Dispatcher) EnqueueReplay(events []matcher.Event) {
	if len(events) > replayQueueCap {
		d.log.Warn("dropping passthrough replay of %d events (cap %d)", len(events), replayQueueCap)
		return
	}
	d.replay = append(d.replay, events...)
}

// ForwardKey synthesizes a single keystroke immediately, bypassing
// the pending-action and replay queues entirely. The matcher calls
// this to echo a disqualified run's keys live, one at a time, while a
// floated device is still swallowing them (spec.md §4.1's
// "Watching, maybe=false" row).
func (d *Dispatcher) ForwardKey(kc keyseq.Keycode, press bool) error {
	return d.display.SendKey(byte(kc), press)
}

// Step advances the dispatcher by at most one synthesized event and
// returns the duration until it should be called again, or nil if it
// is idle. The event loop computes its overall poll timeout as
// min(dispatcher's returned duration, other deadlines).
func (d *Dispatcher) Step(now time.Time) *time.Duration {
	if now.Before(d.resumeAt) {
		wait := d.resumeAt.Sub(now)
		return &wait
	}

	if d.running != nil {
		wait, done := d.advanceRunning()
		if done {
			d.running = nil
		}
		d.resumeAt = now.Add(wait)
		return &wait
	}

	if len(d.replay) > 0 {
		ev := d.replay[0]
		d.replay = d.replay[1:]
		if err := d.display.SendKey(byte(ev.Keycode), ev.Press); err != nil {
			d.log.Warn("replay injection for keycode %d failed: %v", ev.Keycode, err)
		}
		d.resumeAt = now.Add(replayPace)
		wait := replayPace
		return &wait
	}

	if len(d.pending) > 0 {
		next := d.pending[0]
		d.pending = d.pending[1:]
		d.beginRunning(next)
		return d.Step(now)
	}

	return nil
}

func (d *Dispatcher) beginRunning(a action.Action) {
	switch a.Kind {
	case action.KindText:
		if len(a.Text) == 0 {
			return
		}
		d.log.Debug("typing text action: %d grapheme cluster(s)", uniseg.GraphemeClusterCount(a.Text))
		d.running = newTextRunning(a.Text)
	case action.KindKeyStroke:
		if len(a.Keys) == 0 {
			return
		}
		d.running = newKeysRunning(a.Keys)
	case action.KindMouseClick:
		d.running = newMouseRunning(a.Button)
	case action.KindExec:
		if err := d.spawner.Spawn(a.Argv); err != nil {
			d.log.Warn("exec action failed: %v", err)
		}
	default:
		d.log.Warn("unhandled action kind %v in dispatcher", a.Kind)
	}
}
