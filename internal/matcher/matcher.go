package matcher

import (
	"github.com/wzhd/kseqi/internal/action"
	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/logging"
)

// Event is one raw press/release observed on a watched device.
type Event struct {
	DeviceID uint16
	Keycode  keyseq.Keycode
	Press    bool
}

// Dispatcher is the subset of internal/dispatch.Dispatcher the
// matcher drives: enqueue a matched action-list, enqueue a raw run for
// batched pass-through replay once an unmatched run has fully ended
// (the "Miss" case, §4.1 step 2), or forward a single key live while a
// disqualified run is still in progress (the "Watching, maybe=false"
// row).
type Dispatcher interface {
	Enqueue(actions action.List)
	EnqueueReplay(events []Event)
	ForwardKey(kc keyseq.Keycode, press bool) error
}

// GrabController is the subset of internal/grab.Controller the
// matcher drives to implement spec.md §4.2's escalate-on-trigger,
// release-on-run-end policy.
type GrabController interface {
	TryFloat(deviceID uint16) bool
	Release()
	Floating() (uint16, bool)
}

// ModifierSet reports whether a keycode is currently bound to a
// modifier keysym (shift, control, alt, ...) in the live layout.
type ModifierSet interface {
	IsModifier(kc keyseq.Keycode) bool
}

// ResidualKeys reports keycodes the display still considers pressed.
// The matcher consults this at run termination (spec.md §4.1 step 1)
// to restore a clean state if an event was somehow missed.
type ResidualKeys interface {
	KeysStillDown() []keyseq.Keycode
}

// KeyInjector synthesizes a key release, used for the termination
// clean-up pass.
type KeyInjector interface {
	InjectKeyRelease(kc keyseq.Keycode) error
}

// Matcher is the sequence-matcher state machine of spec.md §4.1. It
// is driven one Event at a time by the daemon's event loop and is not
// safe for concurrent use (display-derived state is single-threaded
// throughout, per spec.md §5).
type Matcher struct {
	bindings   *action.Binding
	modifiers  ModifierSet
	grab       GrabController
	dispatcher Dispatcher
	residual   ResidualKeys
	injector   KeyInjector
	log        *logging.Logger

	down   map[keyseq.Keycode]bool
	seqbuf []Event
	maybe  bool
}

// New creates a Matcher. residual/injector may be nil, in which case
// the termination clean-up pass (§4.1 step 1) is skipped — used in
// tests that drive the state machine without a live display.
func New(bindings *action.Binding, modifiers ModifierSet, grab GrabController, dispatcher Dispatcher, residual ResidualKeys, injector KeyInjector, log *logging.Logger) *Matcher {
	if log == nil {
		log = logging.Null
	}
	return &Matcher{
		bindings:   bindings,
		modifiers:  modifiers,
		grab:       grab,
		dispatcher: dispatcher,
		residual:   residual,
		injector:   injector,
		log:        log,
		down:       make(map[keyseq.Keycode]bool),
		maybe:      true,
	}
}

// Handle processes one raw device event, advancing the state machine
// and, at run end, dispatching or replaying as decided by §4.1's
// termination procedure.
func (m *Matcher) Handle(ev Event) {
	wasEmpty := len(m.down) == 0

	if ev.Press {
		if wasEmpty {
			m.startRun(ev)
		} else {
			m.continuePress(ev)
		}
	} else if !m.down[ev.Keycode] {
		m.log.Warn("release of keycode %d not in down set", ev.Keycode)
	}

	if !m.maybe {
		// The run is disqualified. Every key the grab is still
		// swallowing on a floated device never reaches the focused
		// application natively, so it must be forwarded the instant
		// it arrives; a device that never floated already delivered
		// this event natively, so there is nothing to do.
		if deviceID, floating := m.grab.Floating(); floating && deviceID == ev.DeviceID {
			if err := m.dispatcher.ForwardKey(ev.Keycode, ev.Press); err != nil {
				m.log.Warn("live pass-through of keycode %d failed: %v", ev.Keycode, err)
			}
		}
	} else {
		m.seqbuf = append(m.seqbuf, ev)
	}

	if ev.Press {
		m.down[ev.Keycode] = true
	} else {
		delete(m.down, ev.Keycode)
	}

	if len(m.down) == 0 {
		m.terminateRun()
	}
}

// startRun handles the first press of a new run (the Start state of
// §4.1's table). Every event that reaches Start arrived because its
// keycode was under a per-key grab as a configured binding's first
// key, so this is unconditionally an escalation candidate.
func (m *Matcher) startRun(ev Event) {
	m.maybe = true
	if !m.grab.TryFloat(ev.DeviceID) {
		m.log.Warn("device %d grab failed for trigger keycode %d, proceeding pass-through", ev.DeviceID, ev.Keycode)
	}
}

// continuePress handles a non-initial press while a run is active
// (the Watching rows of §4.1's table).
func (m *Matcher) continuePress(ev Event) {
	if !m.maybe {
		return
	}
	if m.modifiers.IsModifier(ev.Keycode) {
		return
	}
	if !m.canExtend(ev.Keycode) {
		m.maybe = false
	}
}

// canExtend reports whether appending keycode to the current seqbuf
// could still be a prefix of some configured sequence. Matching is
// approximate: kseqi does not index bindings by prefix, so this
// checks whether any loaded sequence is at least as long as the
// run-so-far and agrees on every keycode seen so far, counting
// repeats positionally.
func (m *Matcher) canExtend(next keyseq.Keycode) bool {
	prefixLen := len(m.seqbuf) + 1
	for _, entry := range m.bindings.Entries() {
		kcs := entry.Sequence.Keycodes()
		if len(kcs) < prefixLen {
			continue
		}
		if kcs[prefixLen-1] != next {
			continue
		}
		if m.prefixMatches(kcs, prefixLen-1) {
			return true
		}
	}
	return false
}

func (m *Matcher) prefixMatches(kcs []keyseq.Keycode, uptoExclusive int) bool {
	for i := 0; i < uptoExclusive; i++ {
		if kcs[i] != m.seqbuf[i].Keycode {
			return false
		}
	}
	return true
}

// terminateRun implements §4.1's termination procedure.
func (m *Matcher) terminateRun() {
	if m.residual != nil && m.injector != nil {
		for _, kc := range m.residual.KeysStillDown() {
			if err := m.injector.InjectKeyRelease(kc); err != nil {
				m.log.Warn("residual key release for keycode %d failed: %v", kc, err)
			}
		}
	}

	if m.maybe {
		m.resolveRun()
	}
	// A disqualified run's events were already forwarded live, one at
	// a time, as they arrived (see Handle); there is nothing left to
	// replay here.

	if _, floating := m.grab.Floating(); floating {
		m.grab.Release()
	}

	m.seqbuf = nil
	m.maybe = true
}

func (m *Matcher) resolveRun() {
	keycodes := make([]keyseq.Keycode, len(m.seqbuf))
	for i, ev := range m.seqbuf {
		keycodes[i] = ev.Keycode
	}

	seq := keyseq.New(keycodes)
	if !seq.Valid() {
		if keyseq.RejectedForParity(len(keycodes)) {
			m.log.Warn("sequence of length %d rejected (odd length <= 7)", len(keycodes))
		}
		m.replayOrDrop(keycodes)
		return
	}

	if actions, ok := m.bindings.Lookup(seq); ok {
		m.dispatcher.Enqueue(actions)
		return
	}
	m.replayOrDrop(keycodes)
}

func (m *Matcher) replayOrDrop(keycodes []keyseq.Keycode) {
	if m.allModifiers(keycodes) {
		m.log.Debug("modifier-only run of length %d ignored", len(keycodes))
		return
	}
	m.dispatcher.EnqueueReplay(m.seqbuf)
}

func (m *Matcher) allModifiers(keycodes []keyseq.Keycode) bool {
	for _, kc := range keycodes {
		if !m.modifiers.IsModifier(kc) {
			return false
		}
	}
	return true
}
