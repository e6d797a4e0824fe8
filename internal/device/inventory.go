package device

import "strings"

// Querier is the subset of internal/x11.Display the inventory needs,
// kept as an interface so it can be driven by a fake list in tests
// instead of a live X server.
type Querier interface {
	QueryDevices() ([]DeviceInfo, error)
}

// DeviceInfo mirrors internal/x11.DeviceInfo; duplicated here as a
// plain struct so this package does not import internal/x11, keeping
// the dependency direction device -> (nothing X11-specific).
type DeviceInfo struct {
	ID         uint16
	Name       string
	IsSlave    bool
	IsKeyboard bool
	Attachment uint16
}

// Keyboard is one slave keyboard device kseqi watches.
type Keyboard struct {
	ID         uint16
	Name       string
	Attachment uint16
}

// Inventory tracks the current set of watched slave keyboards,
// refreshed from a Querier at start-up and after every hierarchy
// change.
type Inventory struct {
	query     Querier
	keyboards map[uint16]Keyboard
}

// New creates an empty Inventory bound to query.
func New(query Querier) *Inventory {
	return &Inventory{query: query, keyboards: make(map[uint16]Keyboard)}
}

// Diff describes what changed between two Refresh calls, so the grab
// controller can escalate/release grabs and the keysym allocator can
// reassert its mappings only for what actually moved.
type Diff struct {
	Added   []Keyboard
	Removed []Keyboard
}

// Refresh re-queries the device list and returns what changed. It is
// safe to call unconditionally on every EventHierarchyChanged; an
// empty Diff means nothing kseqi cares about moved (e.g. a pointer
// device was plugged in).
func (inv *Inventory) Refresh() (Diff, error) {
	infos, err := inv.query.QueryDevices()
	if err != nil {
		return Diff{}, err
	}

	current := make(map[uint16]Keyboard)
	for _, info := range infos {
		if !isWatchedKeyboard(info) {
			continue
		}
		current[info.ID] = Keyboard{ID: info.ID, Name: info.Name, Attachment: info.Attachment}
	}

	var diff Diff
	for id, kb := range current {
		if _, ok := inv.keyboards[id]; !ok {
			diff.Added = append(diff.Added, kb)
		}
	}
	for id, kb := range inv.keyboards {
		if _, ok := current[id]; !ok {
			diff.Removed = append(diff.Removed, kb)
		}
	}

	inv.keyboards = current
	return diff, nil
}

// Keyboards returns the current watched keyboard list, in no
// particular order.
func (inv *Inventory) Keyboards() []Keyboard {
	out := make([]Keyboard, 0, len(inv.keyboards))
	for _, kb := range inv.keyboards {
		out = append(out, kb)
	}
	return out
}

// Get returns the keyboard with the given device id, if watched.
func (inv *Inventory) Get(id uint16) (Keyboard, bool) {
	kb, ok := inv.keyboards[id]
	return kb, ok
}

// isWatchedKeyboard reports whether info is a real, physical slave
// keyboard kseqi should grab and watch. It excludes non-keyboard
// slaves, master devices, and XTEST's own virtual core keyboard (which
// would otherwise let kseqi's own synthesized key events loop back
// into the matcher).
func isWatchedKeyboard(info DeviceInfo) bool {
	if !info.IsSlave || !info.IsKeyboard {
		return false
	}
	if strings.Contains(info.Name, "XTEST") {
		return false
	}
	return true
}
