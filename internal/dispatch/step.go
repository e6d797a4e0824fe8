package dispatch

import (
	"time"

	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/keysymalloc"
)

// advanceRunning advances the current running action by one
// sub-step, returning the pacing wait and whether the action is now
// complete.
func (d *Dispatcher) advanceRunning() (time.Duration, bool) {
	switch d.running.kind {
	case runningText:
		return d.stepText()
	case runningKeys:
		return d.stepKeys()
	case runningMouse:
		return d.stepMouse()
	default:
		return 0, true
	}
}

// stepText implements the Text running action of spec.md §4.3:
// press/release one character at a time, inserting a shift tap when
// the resolved keycode requires it and a one-cycle settle wait when
// the allocator had to rewrite a spare keycode.
func (d *Dispatcher) stepText() (time.Duration, bool) {
	r := d.running
	if r.textIdx >= len(r.runes) {
		return 0, true
	}

	ch := r.runes[r.textIdx]
	sym, legacy := keyseq.KeysymForRune(ch)
	if legacy {
		d.log.Debug("character %q has a legacy keysym; using its Unicode-form keysym instead", ch)
	}

	kc, group, err := d.keysyms.FindSym(sym)
	if err != nil {
		d.log.Warn("no keycode available for character %q: %v", ch, err)
		r.textIdx++
		r.pressing = true
		r.shifted = false
		r.settled = false
		if r.textIdx >= len(r.runes) {
			return 0, true
		}
		return 0, false
	}

	if group == keysymalloc.Remapped && !r.settled {
		r.settled = true
		return settleNewKeysym, false
	}

	if r.pressing {
		if group == keysymalloc.Shift && !r.shifted {
			_ = d.display.SendKey(d.display.ShiftKeycode(), true)
			r.shifted = true
			return shiftPace, false
		}
		if err := d.display.SendKey(byte(kc), true); err != nil {
			d.log.Warn("injecting press for keycode %d failed: %v", kc, err)
		}
		r.pressing = false
		return keyPressPace, false
	}

	if group == keysymalloc.Shift && r.shifted {
		_ = d.display.SendKey(d.display.ShiftKeycode(), false)
		r.shifted = false
		return shiftPace, false
	}
	if err := d.display.SendKey(byte(kc), false); err != nil {
		d.log.Warn("injecting release for keycode %d failed: %v", kc, err)
	}
	r.textIdx++
	r.pressing = true
	r.settled = false
	return keyReleasePace, r.textIdx >= len(r.runes)
}

// stepKeys implements the KeyStroke running action: press every
// keysym in order, then release them in the same order.
func (d *Dispatcher) stepKeys() (time.Duration, bool) {
	r := d.running

	if r.pressing {
		sym := r.keys[r.keysIdx]
		kc, _, err := d.keysyms.FindSym(sym)
		if err != nil {
			d.log.Warn("no keycode available for keysym %#x: %v", uint32(sym), err)
		} else if err := d.display.SendKey(byte(kc), true); err != nil {
			d.log.Warn("injecting press for keysym %#x failed: %v", uint32(sym), err)
		}
		r.keysIdx++
		if r.keysIdx >= len(r.keys) {
			r.pressing = false
			r.keysIdx = 0
		}
		return keyStrokeStep, false
	}

	sym := r.keys[r.keysIdx]
	kc, _, err := d.keysyms.FindSym(sym)
	if err != nil {
		d.log.Warn("no keycode available for keysym %#x: %v", uint32(sym), err)
	} else if err := d.display.SendKey(byte(kc), false); err != nil {
		d.log.Warn("injecting release for keysym %#x failed: %v", uint32(sym), err)
	}
	r.keysIdx++
	return keyStrokeStep, r.keysIdx >= len(r.keys)
}

// stepMouse implements the MouseClick running action: press, pace,
// release, done.
func (d *Dispatcher) stepMouse() (time.Duration, bool) {
	r := d.running
	if r.pressing {
		if err := d.display.SendButton(r.button, true); err != nil {
			d.log.Warn("injecting button %d press failed: %v", r.button, err)
		}
		r.pressing = false
		return mousePace, false
	}
	if err := d.display.SendButton(r.button, false); err != nil {
		d.log.Warn("injecting button %d release failed: %v", r.button, err)
	}
	return 0, true
}
