package action

import "github.com/wzhd/kseqi/internal/keyseq"

// entry is one (sequence, action-list) pair plus its position in
// load order, kept so diagnostics can name "the later definition" per
// spec.md §3.
type entry struct {
	seq     keyseq.Sequence
	actions List
	order   int
}

// GrabKey is one (keycode, modifier mask) pair that must be requested
// as a per-key exclusive grab because some binding starts with it
// under that modifier combination.
type GrabKey struct {
	Keycode  keyseq.Keycode
	Modifiers uint16
}

// Binding is an insertion-ordered mapping from sequences to action
// lists (spec.md §3). Later insertions of an already-present sequence
// overwrite the earlier one; Put returns the overwritten list so
// callers can log a diagnostic.
type Binding struct {
	order   int
	byKey   map[keyseq.Sequence]*entry
	entries []*entry

	// firstKeycode indexes, for each first keycode of any loaded
	// sequence, the set of modifier masks the grab controller must
	// request a grab under.
	firstKeycode map[keyseq.Keycode]map[uint16]bool
}

// NewBinding creates an empty binding map.
func NewBinding() *Binding {
	return &Binding{
		byKey:        make(map[keyseq.Sequence]*entry),
		firstKeycode: make(map[keyseq.Keycode]map[uint16]bool),
	}
}

// Put inserts or replaces the action list for seq, requesting a grab
// on the sequence's first keycode under mods. It returns the
// replaced action list and true if one existed.
func (b *Binding) Put(seq keyseq.Sequence, actions List, mods uint16) (List, bool) {
	var replaced List
	var hadReplaced bool

	if old, ok := b.byKey[seq]; ok {
		replaced = old.actions
		hadReplaced = true
		old.actions = actions
		old.order = b.order
	} else {
		e := &entry{seq: seq, actions: actions, order: b.order}
		b.byKey[seq] = e
		b.entries = append(b.entries, e)
	}
	b.order++

	if seq.Len() > 0 {
		first := seq.At(0)
		set, ok := b.firstKeycode[first]
		if !ok {
			set = make(map[uint16]bool)
			b.firstKeycode[first] = set
		}
		set[mods] = true
	}

	return replaced, hadReplaced
}

// Lookup returns the action list bound to seq, if any.
func (b *Binding) Lookup(seq keyseq.Sequence) (List, bool) {
	e, ok := b.byKey[seq]
	if !ok {
		return nil, false
	}
	return e.actions, true
}

// Len returns the number of distinct sequences bound.
func (b *Binding) Len() int { return len(b.entries) }

// Entries returns bindings in insertion order (later puts to an
// existing sequence keep their original slot but carry the newest
// action list).
func (b *Binding) Entries() [](struct {
	Sequence keyseq.Sequence
	Actions  List
}) {
	out := make([](struct {
		Sequence keyseq.Sequence
		Actions  List
	}), len(b.entries))
	for i, e := range b.entries {
		out[i].Sequence = e.seq
		out[i].Actions = e.actions
	}
	return out
}

// GrabKeys returns the set of (keycode, modifier mask) pairs that
// must be grabbed because they start some configured binding — the
// side index spec.md §3 describes, consumed by the grab controller at
// start-up.
func (b *Binding) GrabKeys() []GrabKey {
	var out []GrabKey
	for kc, mods := range b.firstKeycode {
		for m := range mods {
			out = append(out, GrabKey{Keycode: kc, Modifiers: m})
		}
	}
	return out
}

// FirstKeycodeGrabbed reports whether kc is the first keycode of at
// least one loaded binding — used by the matcher's Start state to
// decide whether a press should trigger grab escalation.
func (b *Binding) FirstKeycodeGrabbed(kc keyseq.Keycode) bool {
	_, ok := b.firstKeycode[kc]
	return ok
}
