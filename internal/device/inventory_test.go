package device

import "testing"

type fakeQuerier struct {
	devices []DeviceInfo
}

func (f *fakeQuerier) QueryDevices() ([]DeviceInfo, error) {
	return f.devices, nil
}

func TestRefreshFiltersNonKeyboardSlaves(t *testing.T) {
	q := &fakeQuerier{devices: []DeviceInfo{
		{ID: 1, Name: "Virtual core pointer", IsSlave: false, IsKeyboard: false},
		{ID: 2, Name: "Virtual core keyboard", IsSlave: false, IsKeyboard: true},
		{ID: 3, Name: "AT Translated Set 2 keyboard", IsSlave: true, IsKeyboard: true},
		{ID: 4, Name: "Some USB Mouse", IsSlave: true, IsKeyboard: false},
		{ID: 5, Name: "Virtual core XTEST keyboard", IsSlave: true, IsKeyboard: true},
	}}
	inv := New(q)

	diff, err := inv.Refresh()
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0].ID != 3 {
		t.Fatalf("expected only device 3 added, got %+v", diff.Added)
	}
	if len(inv.Keyboards()) != 1 {
		t.Fatalf("expected 1 watched keyboard, got %d", len(inv.Keyboards()))
	}
}

func TestRefreshReportsAddedAndRemoved(t *testing.T) {
	q := &fakeQuerier{devices: []DeviceInfo{
		{ID: 3, Name: "kbd A", IsSlave: true, IsKeyboard: true},
	}}
	inv := New(q)
	if _, err := inv.Refresh(); err != nil {
		t.Fatalf("Refresh 1: %v", err)
	}

	q.devices = []DeviceInfo{
		{ID: 3, Name: "kbd A", IsSlave: true, IsKeyboard: true},
		{ID: 7, Name: "kbd B", IsSlave: true, IsKeyboard: true},
	}
	diff, err := inv.Refresh()
	if err != nil {
		t.Fatalf("Refresh 2: %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0].ID != 7 {
		t.Fatalf("expected device 7 added, got %+v", diff.Added)
	}
	if len(diff.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %+v", diff.Removed)
	}

	q.devices = nil
	diff, err = inv.Refresh()
	if err != nil {
		t.Fatalf("Refresh 3: %v", err)
	}
	if len(diff.Removed) != 2 {
		t.Fatalf("expected both devices removed, got %+v", diff.Removed)
	}
	if len(inv.Keyboards()) != 0 {
		t.Fatalf("expected no watched keyboards left")
	}
}
