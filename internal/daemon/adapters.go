package daemon

import (
	"github.com/wzhd/kseqi/internal/device"
	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/logging"
	"github.com/wzhd/kseqi/internal/x11"
)

// deviceQuerier adapts internal/x11.Display's QueryDevices to
// internal/device.Querier, converting between the two packages'
// identical-shaped DeviceInfo structs so neither package needs to
// import the other.
type deviceQuerier struct {
	display *x11.Display
}

func (q deviceQuerier) QueryDevices() ([]device.DeviceInfo, error) {
	infos, err := q.display.QueryDevices()
	if err != nil {
		return nil, err
	}
	out := make([]device.DeviceInfo, len(infos))
	for i, in := range infos {
		out[i] = device.DeviceInfo{
			ID:         in.ID,
			Name:       in.Name,
			IsSlave:    in.IsSlave,
			IsKeyboard: in.IsKeyboard,
			Attachment: in.Attachment,
		}
	}
	return out, nil
}

// modifierSet adapts internal/x11.Display's live keyboard mapping to
// internal/matcher.ModifierSet.
type modifierSet struct {
	display *x11.Display
}

func (m modifierSet) IsModifier(kc keyseq.Keycode) bool {
	for _, sym := range m.display.KeysymsForKeycode(kc) {
		if keyseq.IsModifierKeysym(sym) {
			return true
		}
	}
	return false
}

// residualKeys adapts x11.Display.QueryKeymap to
// internal/matcher.ResidualKeys, swallowing a query failure to an
// empty result since the clean-up pass it feeds is itself a safety
// net, not a required step.
type residualKeys struct {
	display *x11.Display
	log     *logging.Logger
}

func (r residualKeys) KeysStillDown() []keyseq.Keycode {
	down, err := r.display.QueryKeymap()
	if err != nil {
		r.log.Warn("querying keymap for residual-key cleanup: %v", err)
		return nil
	}
	return down
}
