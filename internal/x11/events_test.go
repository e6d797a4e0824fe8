package x11

import (
	"encoding/binary"
	"testing"

	"github.com/jezek/xgb"
)

func rawKeyEventData(evtype, deviceID uint16, keycode uint32) []byte {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint16(data[0:], evtype)
	binary.LittleEndian.PutUint16(data[14:], deviceID)
	binary.LittleEndian.PutUint32(data[20:], keycode)
	return data
}

func TestTranslateGenericEventRawKeyPress(t *testing.T) {
	d := &Display{xiOpcode: 131}
	ge := &xgb.GenericEvent{Extension: 131, Data: rawKeyEventData(XIRawKeyPress, 7, 38)}

	ev, ok := d.translateGenericEvent(ge)
	if !ok {
		t.Fatal("translateGenericEvent returned ok=false for a recognized event")
	}
	if ev.Kind != EventRawKey || ev.DeviceID != 7 || ev.Keycode != 38 || !ev.Press {
		t.Errorf("got %+v", ev)
	}
}

func TestTranslateGenericEventKeyReleaseFromPassiveGrab(t *testing.T) {
	d := &Display{xiOpcode: 131}
	ge := &xgb.GenericEvent{Extension: 131, Data: rawKeyEventData(XIKeyRelease, 9, 44)}

	ev, ok := d.translateGenericEvent(ge)
	if !ok {
		t.Fatal("translateGenericEvent returned ok=false for a recognized event")
	}
	if ev.Kind != EventRawKey || ev.Press {
		t.Errorf("got %+v, want a release", ev)
	}
}

func TestTranslateGenericEventHierarchyChanged(t *testing.T) {
	d := &Display{xiOpcode: 131}
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:], XIHierarchyChanged)
	ge := &xgb.GenericEvent{Extension: 131, Data: data}

	ev, ok := d.translateGenericEvent(ge)
	if !ok || ev.Kind != EventHierarchyChanged {
		t.Errorf("got (%+v, %v), want EventHierarchyChanged", ev, ok)
	}
}

func TestTranslateGenericEventUnrecognizedSkipped(t *testing.T) {
	d := &Display{xiOpcode: 131}
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:], 99) // not a type kseqi handles
	ge := &xgb.GenericEvent{Extension: 131, Data: data}

	if _, ok := d.translateGenericEvent(ge); ok {
		t.Error("unrecognized event type should return ok=false")
	}
}
