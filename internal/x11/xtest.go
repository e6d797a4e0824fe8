package x11

import (
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
)

// SendKey injects a synthetic key press or release for keycode via
// XTEST, as if it came from the core keyboard. The action dispatcher
// (spec.md §4.3) calls this for every step of a KeyStroke action and
// for the shift taps text synthesis needs.
func (d *Display) SendKey(keycode byte, press bool) error {
	typ := uint8(xproto.KeyPress)
	if !press {
		typ = uint8(xproto.KeyRelease)
	}
	return xtest.FakeInputChecked(d.conn, typ, keycode, xproto.TimeCurrentTime, d.root, 0, 0, 0).Check()
}

// SendButton injects a synthetic button press or release for the
// given button number (1-based, as X11 numbers mouse buttons).
func (d *Display) SendButton(button byte, press bool) error {
	typ := uint8(xproto.ButtonPress)
	if !press {
		typ = uint8(xproto.ButtonRelease)
	}
	return xtest.FakeInputChecked(d.conn, typ, button, xproto.TimeCurrentTime, d.root, 0, 0, 0).Check()
}

// Click performs a full press-then-release of button, with no
// inter-event delay of its own; the dispatcher is responsible for the
// 4ms mouse pacing spec.md §9 specifies.
func (d *Display) Click(button byte) error {
	if err := d.SendButton(button, true); err != nil {
		return err
	}
	return d.SendButton(button, false)
}
