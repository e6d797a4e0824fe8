package keysymalloc

import (
	"fmt"

	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/logging"
)

// Group classifies how a keysym was resolved to a keycode, and is the
// signal the action dispatcher's Text running-action uses to decide
// its pacing (spec.md §4.3).
type Group int

const (
	// Old: already present in the layout's unshifted position.
	Old Group = iota
	// Shift: present, but requires the shift modifier.
	Shift
	// Remapped: a spare keycode was just rewritten to carry this keysym;
	// the dispatcher must wait one cycle before pressing it.
	Remapped
)

// unicodeKeysymRangeLow and unicodeKeysymRangeHigh bound the
// Unicode-keysym encoding space spec.md §4.4 uses for the spare-
// keycode fallback heuristic.
const (
	unicodeKeysymRangeLow  = 0x01000000
	unicodeKeysymRangeHigh = 0x10000000
)

const maxMutSyms = 5

// Display is the subset of internal/x11.Display the allocator needs.
type Display interface {
	KeysymsForKeycode(kc keyseq.Keycode) []keyseq.Keysym
	MinKeycode() keyseq.Keycode
	MaxKeycode() keyseq.Keycode
	ChangeKeyboardMapping(kc keyseq.Keycode, syms []keyseq.Keysym) error
	Sync() error
}

type defEntry struct {
	keycode keyseq.Keycode
	shifted bool
}

type mutEntry struct {
	keysym  keyseq.Keysym
	keycode keyseq.Keycode
}

// Allocator is the dynamic keysym allocator.
type Allocator struct {
	display Display
	log     *logging.Logger

	defSyms map[keyseq.Keysym]defEntry
	mutSyms []mutEntry
}

// New builds an Allocator by walking the layout: def_syms collects
// every keysym currently reachable without mutation (first-found
// keycode/level wins), and mut_syms collects up to 5 spare keycodes
// (spec.md §4.4) to rewrite on demand.
func New(display Display, log *logging.Logger) *Allocator {
	if log == nil {
		log = logging.Null
	}
	a := &Allocator{
		display: display,
		log:     log,
		defSyms: make(map[keyseq.Keysym]defEntry),
	}
	a.buildDefSyms()
	a.buildMutSyms()
	return a
}

func (a *Allocator) buildDefSyms() {
	min, max := a.display.MinKeycode(), a.display.MaxKeycode()
	for kc := min; kc <= max; kc++ {
		for level, sym := range a.display.KeysymsForKeycode(kc) {
			if sym == keyseq.NoSymbol {
				continue
			}
			if _, exists := a.defSyms[sym]; exists {
				continue
			}
			a.defSyms[sym] = defEntry{keycode: kc, shifted: level > 0}
		}
		if kc == max {
			break // keyseq.Keycode is a uint8; avoid overflow on max+1
		}
	}
}

func (a *Allocator) buildMutSyms() {
	min, max := a.display.MinKeycode(), a.display.MaxKeycode()

	for kc := min; kc <= max && len(a.mutSyms) < maxMutSyms; kc++ {
		if isEmptyLayoutEntry(a.display.KeysymsForKeycode(kc)) {
			a.mutSyms = append(a.mutSyms, mutEntry{keysym: keyseq.NoSymbol, keycode: kc})
		}
		if kc == max {
			break
		}
	}

	if len(a.mutSyms) == 0 {
		for kc := min; kc <= max && len(a.mutSyms) < maxMutSyms; kc++ {
			for _, sym := range a.display.KeysymsForKeycode(kc) {
				if uint32(sym) >= unicodeKeysymRangeLow && uint32(sym) < unicodeKeysymRangeHigh {
					a.mutSyms = append(a.mutSyms, mutEntry{keysym: sym, keycode: kc})
					break
				}
			}
			if kc == max {
				break
			}
		}
	}

	if len(a.mutSyms) == 0 {
		a.log.Warn("no spare keycodes found for the dynamic keysym allocator; arbitrary Unicode text will be limited to the layout's native keysyms")
	}
}

func isEmptyLayoutEntry(syms []keyseq.Keysym) bool {
	if len(syms) == 0 {
		return true
	}
	for _, s := range syms {
		if s != keyseq.NoSymbol {
			return false
		}
	}
	return true
}

// FindSym resolves sym to a keycode, mutating a spare keycode if
// necessary. Group tells the caller (the dispatcher's Text running
// action) whether a settle delay is required before injecting a
// press.
func (a *Allocator) FindSym(sym keyseq.Keysym) (keyseq.Keycode, Group, error) {
	if e, ok := a.defSyms[sym]; ok {
		if e.shifted {
			return e.keycode, Shift, nil
		}
		return e.keycode, Old, nil
	}

	if len(a.mutSyms) == 0 {
		return 0, Old, fmt.Errorf("no spare keycode available to realize keysym %#x", uint32(sym))
	}

	if a.mutSyms[0].keysym == sym {
		return a.mutSyms[0].keycode, Old, nil
	}

	a.mutSyms = append(a.mutSyms[1:], a.mutSyms[0])
	front := &a.mutSyms[0]
	front.keysym = sym

	if err := a.display.ChangeKeyboardMapping(front.keycode, []keyseq.Keysym{sym}); err != nil {
		return 0, Old, fmt.Errorf("rebinding spare keycode %d to keysym %#x: %w", front.keycode, uint32(sym), err)
	}
	if err := a.display.Sync(); err != nil {
		return 0, Old, fmt.Errorf("syncing after keysym rebind: %w", err)
	}
	return front.keycode, Remapped, nil
}

// OnDeviceChange reasserts every non-zero mut_syms mapping, since the
// server may have reset keycode mappings when the keyboard hierarchy
// changed (spec.md §4.4's device change handler).
func (a *Allocator) OnDeviceChange() {
	changed := false
	for _, e := range a.mutSyms {
		if e.keysym == keyseq.NoSymbol {
			continue
		}
		if err := a.display.ChangeKeyboardMapping(e.keycode, []keyseq.Keysym{e.keysym}); err != nil {
			a.log.Warn("reasserting keysym %#x on keycode %d after device change failed: %v", uint32(e.keysym), e.keycode, err)
			continue
		}
		changed = true
	}
	if changed {
		if err := a.display.Sync(); err != nil {
			a.log.Warn("sync after device-change reassertion failed: %v", err)
		}
	}
}

// Close reverts every mutated spare keycode back to "no symbol" and
// synchronizes. This is mandatory cleanup (spec.md §4.4): leaving a
// mutation behind clobbers a key on the user's real layout.
func (a *Allocator) Close() {
	reverted := false
	for i := range a.mutSyms {
		e := &a.mutSyms[i]
		if e.keysym == keyseq.NoSymbol {
			continue
		}
		if err := a.display.ChangeKeyboardMapping(e.keycode, []keyseq.Keysym{keyseq.NoSymbol}); err != nil {
			a.log.Error("reverting spare keycode %d failed, key may be left clobbered: %v", e.keycode, err)
			continue
		}
		e.keysym = keyseq.NoSymbol
		reverted = true
	}
	if reverted {
		if err := a.display.Sync(); err != nil {
			a.log.Error("sync after reverting keysym allocator mappings failed: %v", err)
		}
	}
}
