package matcher

import (
	"testing"

	"github.com/wzhd/kseqi/internal/action"
	"github.com/wzhd/kseqi/internal/keyseq"
)

type fakeDispatcher struct {
	enqueued  []action.List
	replayed  [][]Event
	forwarded []Event
}

func (f *fakeDispatcher) Enqueue(actions action.List) { f.enqueued = append(f.enqueued, actions) }
func (f *fakeDispatcher) EnqueueReplay(events []Event) {
	cp := append([]Event(nil), events...)
	f.replayed = append(f.replayed, cp)
}
func (f *fakeDispatcher) ForwardKey(kc keyseq.Keycode, press bool) error {
	f.forwarded = append(f.forwarded, Event{Keycode: kc, Press: press})
	return nil
}

type fakeGrab struct {
	floatOK     bool
	floatingDev uint16
	isFloating  bool
}

func (f *fakeGrab) TryFloat(deviceID uint16) bool {
	if !f.floatOK {
		return false
	}
	f.isFloating = true
	f.floatingDev = deviceID
	return true
}
func (f *fakeGrab) Release()                          { f.isFloating = false }
func (f *fakeGrab) Floating() (uint16, bool)          { return f.floatingDev, f.isFloating }

type fakeModifiers struct {
	mods map[keyseq.Keycode]bool
}

func (f *fakeModifiers) IsModifier(kc keyseq.Keycode) bool { return f.mods[kc] }

func newTestMatcher(b *action.Binding, mods map[keyseq.Keycode]bool) (*Matcher, *fakeDispatcher, *fakeGrab) {
	disp := &fakeDispatcher{}
	grab := &fakeGrab{floatOK: true}
	m := New(b, &fakeModifiers{mods: mods}, grab, disp, nil, nil, nil)
	return m, disp, grab
}

func TestMatcherMatchesConfiguredSequence(t *testing.T) {
	b := action.NewBinding()
	seq := keyseq.New([]keyseq.Keycode{10, 20, 20, 10})
	wantActions := action.List{action.NewText("hi")}
	b.Put(seq, wantActions, 0)

	m, disp, _ := newTestMatcher(b, nil)
	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: true})
	m.Handle(Event{DeviceID: 1, Keycode: 20, Press: true})
	m.Handle(Event{DeviceID: 1, Keycode: 20, Press: false})
	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: false})

	if len(disp.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued action list, got %d", len(disp.enqueued))
	}
	if len(disp.replayed) != 0 {
		t.Fatalf("expected no replay, got %v", disp.replayed)
	}
	if len(m.seqbuf) != 0 || !m.maybe {
		t.Fatalf("expected clean state after match, got seqbuf=%v maybe=%v", m.seqbuf, m.maybe)
	}
}

func TestMatcherReplaysUnmatchedRun(t *testing.T) {
	b := action.NewBinding()
	m, disp, _ := newTestMatcher(b, nil)

	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: true})
	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: false})

	if len(disp.enqueued) != 0 {
		t.Fatalf("expected no match, got %v", disp.enqueued)
	}
	if len(disp.replayed) != 1 || len(disp.replayed[0]) != 2 {
		t.Fatalf("expected a 2-event replay, got %v", disp.replayed)
	}
}

func TestMatcherIgnoresModifierOnlyRun(t *testing.T) {
	b := action.NewBinding()
	mods := map[keyseq.Keycode]bool{50: true}
	m, disp, _ := newTestMatcher(b, mods)

	m.Handle(Event{DeviceID: 1, Keycode: 50, Press: true})
	m.Handle(Event{DeviceID: 1, Keycode: 50, Press: false})

	if len(disp.enqueued) != 0 || len(disp.replayed) != 0 {
		t.Fatalf("expected modifier-only run to be silently dropped, got enqueued=%v replayed=%v", disp.enqueued, disp.replayed)
	}
}

func TestMatcherForwardsDisqualifiedRunLive(t *testing.T) {
	b := action.NewBinding()
	m, disp, _ := newTestMatcher(b, nil)

	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: true}) // Start: floats, nothing forwarded yet
	if len(disp.forwarded) != 0 {
		t.Fatalf("trigger key itself must not be forwarded, got %v", disp.forwarded)
	}

	m.Handle(Event{DeviceID: 1, Keycode: 20, Press: true}) // disqualifies (no binding has this prefix)
	m.Handle(Event{DeviceID: 1, Keycode: 20, Press: false})
	m.Handle(Event{DeviceID: 1, Keycode: 10, Press: false}) // ends the run

	want := []Event{
		// ForwardKey carries no device id, so the fake records DeviceID 0.
		{Keycode: 20, Press: true},
		{Keycode: 20, Press: false},
		{Keycode: 10, Press: false},
	}
	if len(disp.forwarded) != len(want) {
		t.Fatalf("forwarded = %v, want %v", disp.forwarded, want)
	}
	for i, w := range want {
		if disp.forwarded[i] != w {
			t.Errorf("forwarded[%d] = %+v, want %+v", i, disp.forwarded[i], w)
		}
	}
	if len(disp.replayed) != 0 {
		t.Fatalf("disqualified run must not also be batch-replayed at termination, got %v", disp.replayed)
	}
	if len(disp.enqueued) != 0 {
		t.Fatalf("disqualified run must not match a binding, got %v", disp.enqueued)
	}
}

func TestMatcherReleasesFloatAtRunEnd(t *testing.T) {
	b := action.NewBinding()
	m, _, grab := newTestMatcher(b, nil)

	m.Handle(Event{DeviceID: 3, Keycode: 10, Press: true})
	if _, floating := grab.Floating(); !floating {
		t.Fatalf("expected device to be floating mid-run")
	}
	m.Handle(Event{DeviceID: 3, Keycode: 10, Press: false})
	if _, floating := grab.Floating(); floating {
		t.Fatalf("expected float released at run end")
	}
}
