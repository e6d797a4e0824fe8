package x11

import (
	"encoding/binary"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/wzhd/kseqi/internal/keyseq"
)

// EventKind classifies the translated events kseqi's daemon loop
// reacts to: raw key activity from a watched slave device, and device
// hierarchy changes (plug/unplug) that the device inventory and grab
// controller must react to.
type EventKind int

const (
	EventRawKey EventKind = iota
	EventHierarchyChanged
	EventMappingChanged
)

// Event is the translated form of whatever XInput2/core event xgb
// handed back, carrying just the fields the matcher and device
// inventory need.
type Event struct {
	Kind EventKind

	// EventRawKey
	DeviceID uint16
	Keycode  keyseq.Keycode
	Press    bool

	// EventHierarchyChanged carries no payload; the receiver re-runs
	// QueryDevices to get the authoritative new device list.
}

// SelectRawKeyEvents subscribes to RawKeyPress/RawKeyRelease on every
// device (xiAllDevices matches any device, with owner_events off so
// events arrive regardless of window focus) and to hierarchy-change
// notifications on the root window.
func (d *Display) SelectRawKeyEvents() error {
	if err := d.SelectEvents(xiAllDevices, XIRawKeyPress, XIRawKeyRelease, XIHierarchyChanged); err != nil {
		return err
	}
	return d.Sync()
}

// NextEvent blocks until the next translated event is available, or
// returns an error if the connection fails. Events this layer does
// not recognize (ordinary core events, XInput2 event types kseqi
// doesn't subscribe to) are skipped transparently.
func (d *Display) NextEvent() (Event, error) {
	for {
		raw, err := d.conn.WaitForEvent()
		if err != nil {
			return Event{}, fmt.Errorf("waiting for X11 event: %w", err)
		}
		if raw == nil {
			return Event{}, fmt.Errorf("X11 connection closed")
		}

		ge, ok := raw.(*xgb.GenericEvent)
		if !ok {
			continue
		}
		if ge.Extension != d.xiOpcode {
			continue
		}

		evt, ok := d.translateGenericEvent(ge)
		if ok {
			return evt, nil
		}
	}
}

// translateGenericEvent decodes the XInput2 GenericEvent wire payload
// kseqi cares about. The generic event header is 32 bytes; field
// offsets below follow the XI2 protocol's xXIDeviceEvent /
// xXIHierarchyEvent layout.
func (d *Display) translateGenericEvent(ge *xgb.GenericEvent) (Event, bool) {
	if len(ge.Data) < 4 {
		return Event{}, false
	}
	evtype := int(binary.LittleEndian.Uint16(ge.Data[0:]))

	switch evtype {
	case XIRawKeyPress, XIRawKeyRelease, XIKeyPress, XIKeyRelease:
		// xXIRawEvent and xXIDeviceEvent share the same deviceid/time/
		// detail(keycode) prefix in the XI2 wire format, diverging only
		// afterward (root/event/child coordinates for device events,
		// valuator data for raw events) — both a device-wide raw-event
		// subscription and a passive per-key grab's delivered event
		// decode identically for kseqi's purposes.
		if len(ge.Data) < 24 {
			return Event{}, false
		}
		deviceID := binary.LittleEndian.Uint16(ge.Data[14:])
		detail := binary.LittleEndian.Uint32(ge.Data[20:])
		return Event{
			Kind:     EventRawKey,
			DeviceID: deviceID,
			Keycode:  keyseq.Keycode(detail),
			Press:    evtype == XIRawKeyPress || evtype == XIKeyPress,
		}, true

	case XIHierarchyChanged:
		return Event{Kind: EventHierarchyChanged}, true

	default:
		return Event{}, false
	}
}
