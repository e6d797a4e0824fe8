package keyseq

import (
	"fmt"
	"strings"
)

// NameResolver converts a human key name from the config file into a
// keysym. It tries, in order: a built-in alias table, a one-character
// fast path for ASCII alphanumerics, then falls back to a
// display-provided name-to-keysym function (X11's XStringToKeysym).
//
// Grounded on internal/input/key/modifier.go's modifierNameMap +
// ParseModifiers lookup pattern in the teacher.
type NameResolver struct {
	// Fallback resolves names the alias table and fast path miss,
	// typically backed by the display binding's XStringToKeysym.
	Fallback func(name string) (Keysym, bool)
}

// NewNameResolver creates a resolver with the given display fallback.
func NewNameResolver(fallback func(string) (Keysym, bool)) *NameResolver {
	return &NameResolver{Fallback: fallback}
}

// keyAliases maps common config-file spellings to their X11 keysym
// value (so "Return" and "Enter" both work, matching how config files
// in the wild spell things inconsistently).
var keyAliases = map[string]Keysym{
	"esc":       0xff1b,
	"escape":    0xff1b,
	"enter":     0xff0d,
	"return":    0xff0d,
	"tab":       0xff09,
	"backspace": 0xff08,
	"delete":    0xffff,
	"del":       0xffff,
	"insert":    0xff63,
	"ins":       0xff63,
	"home":      0xff50,
	"end":       0xff57,
	"pageup":    0xff55,
	"pgup":      0xff55,
	"pagedown":  0xff56,
	"pgdn":      0xff56,
	"up":        0xff52,
	"down":      0xff54,
	"left":      0xff51,
	"right":     0xff53,
	"space":     0x0020,
	"capslock":  0xffe5,
	"numlock":   0xff7f,
	"scrolllock": 0xff14,
	"shift":     0xffe1,
	"shift_l":   0xffe1,
	"shift_r":   0xffe2,
	"ctrl":      0xffe3,
	"control":   0xffe3,
	"ctrl_l":    0xffe3,
	"ctrl_r":    0xffe4,
	"leftcontrol": 0xffe3,
	"grave":     0x0060,
	"alt":       0xffe9,
	"alt_l":     0xffe9,
	"alt_r":     0xffea,
	"super":     0xffeb,
	"super_l":   0xffeb,
	"super_r":   0xffec,
	"menu":      0xff67,
	"f1":        0xffbe, "f2": 0xffbf, "f3": 0xffc0, "f4": 0xffc1,
	"f5": 0xffc2, "f6": 0xffc3, "f7": 0xffc4, "f8": 0xffc5,
	"f9": 0xffc6, "f10": 0xffc7, "f11": 0xffc8, "f12": 0xffc9,
}

// Resolve converts a key name into a keysym.
func (r *NameResolver) Resolve(name string) (Keysym, bool) {
	lower := strings.ToLower(name)
	if sym, ok := keyAliases[lower]; ok {
		return sym, true
	}
	// ASCII alphanumeric fast path: the keysym for a single lowercase
	// letter or digit is the code point itself, matching the X11
	// convention (spec.md §3's "one-character fast path").
	if len(name) == 1 {
		c := name[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return Keysym(c), true
		}
		if c >= 'A' && c <= 'Z' {
			return Keysym(c - 'A' + 'a'), true
		}
	}
	if r.Fallback != nil {
		return r.Fallback(name)
	}
	return NoSymbol, false
}

// modifierKeysyms are the keysyms this package treats as "modifier"
// for matcher and grab purposes: shift, caps lock, control, and the
// five mod slots' typical left/right keysyms.
var modifierKeysyms = map[Keysym]bool{
	0xffe1: true, 0xffe2: true, // Shift L/R
	0xffe5: true, // Caps Lock
	0xffe3: true, 0xffe4: true, // Control L/R
	0xffe9: true, 0xffea: true, // Alt L/R
	0xffeb: true, 0xffec: true, // Super L/R
	0xffe7: true, 0xffe8: true, // Meta L/R
	0xff7e: true, // Mode_switch
}

// IsModifierKeysym reports whether sym is one of the well-known
// modifier keysyms.
func IsModifierKeysym(sym Keysym) bool {
	return modifierKeysyms[sym]
}

// keysymNames is the reverse of keyAliases, built once at package
// init, used by Keysym.Name for the key viewer's display (spec.md §6).
// Alphabetic keys deliberately do not get an entry here: their rune
// form is more useful to a human reading the viewer's output than
// their alias name.
var keysymNames = func() map[Keysym]string {
	m := make(map[Keysym]string, len(keyAliases))
	for name, sym := range keyAliases {
		if _, exists := m[sym]; !exists {
			m[sym] = name
		}
	}
	return m
}()

// Name returns a human-readable label for sym: its canonical alias
// name if one exists, its rune form if it is a printable ASCII or
// Unicode-range keysym, or a hex fallback otherwise.
func (s Keysym) Name() string {
	if name, ok := keysymNames[s]; ok {
		return name
	}
	if s > 0 && s <= 0x7E {
		return string(rune(s))
	}
	if IsUnicodeKeysym(s) {
		return string(rune(uint32(s) - unicodeKeysymBase))
	}
	return fmt.Sprintf("0x%08x", uint32(s))
}
