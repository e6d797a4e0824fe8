package grab

import (
	"errors"
	"testing"

	"github.com/wzhd/kseqi/internal/x11"
)

type fakeDisplay struct {
	grabErr   error
	ungrabErr error
	grabbed   []uint16
	ungrabbed []uint16
}

func (f *fakeDisplay) GrabDevice(deviceID uint16, mode x11.GrabMode) error {
	if f.grabErr != nil {
		return f.grabErr
	}
	f.grabbed = append(f.grabbed, deviceID)
	return nil
}

func (f *fakeDisplay) UngrabDevice(deviceID uint16) error {
	if f.ungrabErr != nil {
		return f.ungrabErr
	}
	f.ungrabbed = append(f.ungrabbed, deviceID)
	return nil
}

func TestTryFloatSucceeds(t *testing.T) {
	d := &fakeDisplay{}
	c := New(d, nil)

	if !c.TryFloat(5) {
		t.Fatalf("expected TryFloat to succeed")
	}
	id, floating := c.Floating()
	if !floating || id != 5 {
		t.Fatalf("expected device 5 floating, got id=%d floating=%v", id, floating)
	}
}

func TestTryFloatFailsAndLeavesNotFloating(t *testing.T) {
	d := &fakeDisplay{grabErr: errors.New("access denied")}
	c := New(d, nil)

	if c.TryFloat(5) {
		t.Fatalf("expected TryFloat to fail")
	}
	if _, floating := c.Floating(); floating {
		t.Fatalf("expected no device floating after failed grab")
	}
}

func TestReleaseUngrabsFloatingDevice(t *testing.T) {
	d := &fakeDisplay{}
	c := New(d, nil)
	c.TryFloat(9)
	c.Release()

	if len(d.ungrabbed) != 1 || d.ungrabbed[0] != 9 {
		t.Fatalf("expected device 9 ungrabbed, got %v", d.ungrabbed)
	}
	if _, floating := c.Floating(); floating {
		t.Fatalf("expected not floating after Release")
	}
}

func TestReleaseIsNoopWhenNotFloating(t *testing.T) {
	d := &fakeDisplay{}
	c := New(d, nil)
	c.Release()
	if len(d.ungrabbed) != 0 {
		t.Fatalf("expected no ungrab calls, got %v", d.ungrabbed)
	}
}
