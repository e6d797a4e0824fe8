package grab

import (
	"github.com/wzhd/kseqi/internal/logging"
	"github.com/wzhd/kseqi/internal/x11"
)

// Display is the subset of internal/x11.Display the grab controller
// needs. An exclusive XIGrabDevice already captures every subsequent
// event from the slave regardless of its master attachment, so the
// controller folds spec.md's "detach, then grab" floating-slave
// description into a single exclusive-grab call; see DESIGN.md for
// the reasoning.
type Display interface {
	GrabDevice(deviceID uint16, mode x11.GrabMode) error
	UngrabDevice(deviceID uint16) error
}

// Controller maintains the one-device-floating invariant (spec.md
// §4.2) and brackets a run with a whole-device exclusive grab.
type Controller struct {
	display Display
	log     *logging.Logger

	floatingID uint16
	isFloating bool
}

// New creates a Controller.
func New(display Display, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Null
	}
	return &Controller{display: display, log: log}
}

// TryFloat attempts to escalate deviceID to an exclusive grab. It
// returns false (and logs) on failure, per spec.md §4.2's "a failed
// grab is logged and skipped; the run proceeds with pass-through".
// If another device is already floating (should not happen given the
// single-threaded, one-run-at-a-time event loop, but defended against
// regardless), the existing grab is released first.
func (c *Controller) TryFloat(deviceID uint16) bool {
	if c.isFloating {
		if c.floatingID == deviceID {
			return true
		}
		c.log.Warn("device %d requested float while device %d still floating; releasing stale grab", deviceID, c.floatingID)
		c.Release()
	}

	if err := c.display.GrabDevice(deviceID, x11.GrabModeAsync); err != nil {
		c.log.Warn("grab failed for device %d: %v", deviceID, err)
		return false
	}
	c.isFloating = true
	c.floatingID = deviceID
	return true
}

// Release ungrabs the currently floating device, if any. A failed
// ungrab is logged; spec.md §4.2 accepts the device may remain
// grabbed until process exit, where drop-time cleanup retries it.
func (c *Controller) Release() {
	if !c.isFloating {
		return
	}
	if err := c.display.UngrabDevice(c.floatingID); err != nil {
		c.log.Warn("ungrab failed for device %d: %v", c.floatingID, err)
		return
	}
	c.isFloating = false
}

// Floating returns the currently floating device id, if any.
func (c *Controller) Floating() (uint16, bool) {
	return c.floatingID, c.isFloating
}

// ReleaseAll is the drop-time cleanup path: release any still-floating
// device. Safe to call even if nothing is floating.
func (c *Controller) ReleaseAll() {
	c.Release()
}
