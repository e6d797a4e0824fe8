package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/wzhd/kseqi/internal/keyseq"
)

// RefreshKeyboardMapping re-queries the full keycode-to-keysym table
// from the server. kseqi calls this once, from Open at start-up; a
// layout change made later is not picked up by KeycodeForKeysym.
func (d *Display) RefreshKeyboardMapping() error {
	count := d.maxKeycode - d.minKeycode + 1
	reply, err := xproto.GetKeyboardMapping(d.conn, xproto.Keycode(d.minKeycode), count).Reply()
	if err != nil {
		return fmt.Errorf("querying keyboard mapping: %w", err)
	}
	d.keysymsPerKeycode = reply.KeysymsPerKeycode
	d.keyboardMapping = make([]uint32, len(reply.Keysyms))
	for i, ks := range reply.Keysyms {
		d.keyboardMapping[i] = uint32(ks)
	}
	return nil
}

// KeysymsForKeycode returns the list of keysyms bound to kc in the
// current mapping (typically [unshifted, shifted, ...]).
func (d *Display) KeysymsForKeycode(kc keyseq.Keycode) []keyseq.Keysym {
	if d.keysymsPerKeycode == 0 {
		return nil
	}
	idx := (int(kc) - int(d.minKeycode)) * int(d.keysymsPerKeycode)
	if idx < 0 || idx+int(d.keysymsPerKeycode) > len(d.keyboardMapping) {
		return nil
	}
	out := make([]keyseq.Keysym, 0, d.keysymsPerKeycode)
	for i := 0; i < int(d.keysymsPerKeycode); i++ {
		out = append(out, keyseq.Keysym(d.keyboardMapping[idx+i]))
	}
	return out
}

// KeycodeForKeysym finds a keycode currently bound to sym, preferring
// the unshifted (group 1, level 0) binding. Implements
// internal/config.Layout.
func (d *Display) KeycodeForKeysym(sym keyseq.Keysym) (keyseq.Keycode, bool) {
	if d.keysymsPerKeycode == 0 {
		return 0, false
	}
	numKeycodes := len(d.keyboardMapping) / int(d.keysymsPerKeycode)
	// First pass: unshifted level, which is what most physical keys
	// report and what kseqi's own allocated keysyms always occupy.
	for i := 0; i < numKeycodes; i++ {
		if keyseq.Keysym(d.keyboardMapping[i*int(d.keysymsPerKeycode)]) == sym {
			return keyseq.Keycode(int(d.minKeycode) + i), true
		}
	}
	// Second pass: any level, for keys only reachable with a modifier
	// (e.g. shifted punctuation).
	for i := 0; i < numKeycodes; i++ {
		base := i * int(d.keysymsPerKeycode)
		for j := 0; j < int(d.keysymsPerKeycode); j++ {
			if keyseq.Keysym(d.keyboardMapping[base+j]) == sym {
				return keyseq.Keycode(int(d.minKeycode) + i), true
			}
		}
	}
	return 0, false
}

// ChangeKeyboardMapping rebinds keycode kc to syms (padded/truncated
// to the current keysyms-per-keycode width) and updates the local
// cache to match. The keysym allocator (spec.md §4.4) uses this to
// both claim and revert mut_syms entries.
func (d *Display) ChangeKeyboardMapping(kc keyseq.Keycode, syms []keyseq.Keysym) error {
	width := int(d.keysymsPerKeycode)
	if width == 0 {
		width = 2
	}
	padded := make([]xproto.Keysym, width)
	for i := range padded {
		if i < len(syms) {
			padded[i] = xproto.Keysym(syms[i])
		} else {
			padded[i] = xproto.Keysym(keyseq.NoSymbol)
		}
	}

	err := xproto.ChangeKeyboardMappingChecked(
		d.conn,
		1,
		xproto.Keycode(kc),
		byte(width),
		padded,
	).Check()
	if err != nil {
		return fmt.Errorf("changing keyboard mapping for keycode %d: %w", kc, err)
	}

	idx := (int(kc) - int(d.minKeycode)) * int(d.keysymsPerKeycode)
	if idx >= 0 && idx+width <= len(d.keyboardMapping) {
		for i := 0; i < width; i++ {
			d.keyboardMapping[idx+i] = uint32(padded[i])
		}
	}
	return nil
}

// QueryKeymap reports every keycode the server currently considers
// pressed, consulted by the matcher's run-termination clean-up pass
// (spec.md §4.1 step 1) to catch a press whose release event kseqi
// never saw (most commonly a key released while its device was not
// grabbed).
func (d *Display) QueryKeymap() ([]keyseq.Keycode, error) {
	reply, err := xproto.QueryKeymap(d.conn).Reply()
	if err != nil {
		return nil, fmt.Errorf("querying keymap: %w", err)
	}
	var down []keyseq.Keycode
	for byteIdx, b := range reply.Keys {
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) == 0 {
				continue
			}
			kc := byteIdx*8 + bit
			if kc < int(d.minKeycode) || kc > int(d.maxKeycode) {
				continue
			}
			down = append(down, keyseq.Keycode(kc))
		}
	}
	return down, nil
}

// InjectKeyRelease synthesizes a release for kc via XTEST. Implements
// internal/matcher.KeyInjector.
func (d *Display) InjectKeyRelease(kc keyseq.Keycode) error {
	return d.SendKey(byte(kc), false)
}

// recomputeModifiers finds the keycode for Shift_L, used by the text
// dispatcher (spec.md §4.3/§9) to synthesize the 2ms shift press
// before an uppercase or shifted-symbol keysym and the 2ms release
// after.
func (d *Display) recomputeModifiers() {
	if kc, ok := d.KeycodeForKeysym(0xffe1); ok { // Shift_L
		d.shiftKeycode = byte(kc)
	}
}

// ShiftKeycode returns the keycode bound to Shift_L, or 0 if none is
// currently mapped.
func (d *Display) ShiftKeycode() byte { return d.shiftKeycode }

// MinKeycode returns the server's minimum valid keycode.
func (d *Display) MinKeycode() keyseq.Keycode { return keyseq.Keycode(d.minKeycode) }

// MaxKeycode returns the server's maximum valid keycode.
func (d *Display) MaxKeycode() keyseq.Keycode { return keyseq.Keycode(d.maxKeycode) }

// KeysymFromName resolves a small set of named keysyms the display
// library itself understands (core modifier and function keys), for
// use as keyseq.NameResolver's Fallback. Names not in this table (and
// not already covered by keyseq's built-in alias table) cannot be
// referenced from a config file; this mirrors XStringToKeysym's table
// without requiring a cgo dependency on Xlib.
func (d *Display) KeysymFromName(name string) (keyseq.Keysym, bool) {
	sym, ok := displayKeysymNames[name]
	return sym, ok
}

var displayKeysymNames = map[string]keyseq.Keysym{
	"shift_l":      0xffe1,
	"shift_r":      0xffe2,
	"control_l":    0xffe3,
	"control_r":    0xffe4,
	"caps_lock":    0xffe5,
	"shift_lock":   0xffe6,
	"meta_l":       0xffe7,
	"meta_r":       0xffe8,
	"alt_l":        0xffe9,
	"alt_r":        0xffea,
	"super_l":      0xffeb,
	"super_r":      0xffec,
	"hyper_l":      0xffed,
	"hyper_r":      0xffee,
	"leftcontrol":  0xffe3,
	"rightcontrol": 0xffe4,
	"leftshift":    0xffe1,
	"rightshift":   0xffe2,
	"leftalt":      0xffe9,
	"rightalt":     0xffea,
	"leftmeta":     0xffeb,
	"rightmeta":    0xffec,
	"grave":        0x0060,
}
