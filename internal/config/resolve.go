package config

import (
	"fmt"

	"github.com/wzhd/kseqi/internal/action"
	"github.com/wzhd/kseqi/internal/keyseq"
)

// Layout resolves a keysym to its current keycode, per the live X11
// mapping. Implemented by internal/x11.Display.
type Layout interface {
	KeycodeForKeysym(sym keyseq.Keysym) (keyseq.Keycode, bool)
}

// Resolver turns parsed bindings into resolved (Sequence, Action
// list) pairs, resolving key names to keysyms via names and keysyms
// to keycodes via layout.
type Resolver struct {
	Names  *keyseq.NameResolver
	Layout Layout
}

// NewResolver creates a Resolver.
func NewResolver(names *keyseq.NameResolver, layout Layout) *Resolver {
	return &Resolver{Names: names, Layout: layout}
}

// ResolvedBinding is one fully resolved binding ready for insertion
// into an action.Binding map.
type ResolvedBinding struct {
	Line     int
	Sequence keyseq.Sequence
	Actions  action.List
	// LeadModifiers is the modifier mask the first keycode's grab
	// must be requested under, derived from any modifier key names
	// appearing before the first non-modifier key in KeySeq.
	LeadModifiers uint16
}

// Resolve resolves every parsed binding, collecting one error per
// binding that fails to resolve (unknown key name, oversized
// sequence) and continuing with the rest, per spec.md §7's "config
// semantic error" taxonomy.
func (r *Resolver) Resolve(parsed []ParsedBinding) ([]ResolvedBinding, []error) {
	var out []ResolvedBinding
	var errs []error

	for _, pb := range parsed {
		rb, err := r.resolveOne(pb)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", pb.Line, err))
			continue
		}
		out = append(out, rb)
	}
	return out, errs
}

func (r *Resolver) resolveOne(pb ParsedBinding) (ResolvedBinding, error) {
	keycodes := make([]keyseq.Keycode, 0, len(pb.KeySeq))
	for _, name := range pb.KeySeq {
		sym, ok := r.Names.Resolve(name)
		if !ok {
			return ResolvedBinding{}, fmt.Errorf("unknown key name %q", name)
		}
		kc, ok := r.Layout.KeycodeForKeysym(sym)
		if !ok {
			return ResolvedBinding{}, fmt.Errorf("key %q has no keycode in the current layout", name)
		}
		keycodes = append(keycodes, kc)
	}

	if !keyseq.New(keycodes).Valid() {
		return ResolvedBinding{}, fmt.Errorf("sequence of %d keys is out of range [%d,%d]", len(keycodes), keyseq.MinLen, keyseq.MaxLen)
	}

	actions, err := r.resolveActions(pb.Actions)
	if err != nil {
		return ResolvedBinding{}, err
	}

	return ResolvedBinding{
		Line:          pb.Line,
		Sequence:      keyseq.New(keycodes),
		Actions:       actions,
		LeadModifiers: r.leadModifierMask(pb.KeySeq),
	}, nil
}

// leadModifierMask computes the modifier mask the grab controller
// should request the first keycode under, from any modifier key names
// at the start of the sequence (e.g. "leftcontrol j" grabs 'j' under
// the Control mask produced by holding Left Control). Each mention
// toggles the modifier's bit, so a press/release pair cancels out.
func (r *Resolver) leadModifierMask(names []string) uint16 {
	var mask uint16
	for _, n := range names {
		sym, ok := r.Names.Resolve(n)
		if !ok || !keyseq.IsModifierKeysym(sym) {
			break
		}
		mask ^= modifierBitFor(sym)
	}
	return mask
}

// modifierBitFor maps a modifier keysym to its X11 modifier bit.
// Shift=1, Lock=2, Control=4, Mod1..Mod5=8..128.
func modifierBitFor(sym keyseq.Keysym) uint16 {
	switch sym {
	case 0xffe1, 0xffe2: // Shift_L, Shift_R
		return 1 << 0
	case 0xffe5: // Caps_Lock
		return 1 << 1
	case 0xffe3, 0xffe4: // Control_L, Control_R
		return 1 << 2
	case 0xffe9, 0xffea, 0xffe7, 0xffe8: // Alt/Meta L/R
		return 1 << 3
	case 0xffeb, 0xffec: // Super_L, Super_R
		return 1 << 6
	default:
		return 0
	}
}

func (r *Resolver) resolveActions(parsed []ParsedAction) (action.List, error) {
	out := make(action.List, 0, len(parsed))
	for i, pa := range parsed {
		if pa.Kind == "repeat" && i != 0 {
			// Repeat must be first-position only; spec.md §3 flags this
			// as a semantic constraint, but repeat handling itself is
			// resolved at enqueue time (internal/dispatch). Here we only
			// reject a repeat that could never be first.
			return nil, fmt.Errorf("repeat action must be the first action in its list")
		}
		a, err := r.resolveAction(pa)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *Resolver) resolveAction(pa ParsedAction) (action.Action, error) {
	switch pa.Kind {
	case "text":
		return action.NewText(pa.Text), nil
	case "key":
		var keys []keyseq.Keysym
		for _, combo := range pa.KeyCombos {
			for _, name := range combo {
				sym, ok := r.Names.Resolve(name)
				if !ok {
					return action.Action{}, fmt.Errorf("unknown key name %q in key action", name)
				}
				keys = append(keys, sym)
			}
		}
		return action.NewKeyStroke(keys), nil
	case "mouse":
		return action.NewMouseClick(pa.Button), nil
	case "repeat":
		return action.NewRepeat(pa.RepeatCount), nil
	case "exec":
		return action.NewExec(pa.Argv), nil
	default:
		return action.Action{}, fmt.Errorf("unhandled action kind %q", pa.Kind)
	}
}
