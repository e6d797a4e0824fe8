package keyseq

import "testing"

func TestNameResolverAliases(t *testing.T) {
	r := NewNameResolver(nil)
	cases := map[string]Keysym{
		"esc":    0xff1b,
		"Enter":  0xff0d,
		"RETURN": 0xff0d,
		"ctrl_l": 0xffe3,
	}
	for name, want := range cases {
		got, ok := r.Resolve(name)
		if !ok || got != want {
			t.Errorf("Resolve(%q) = (0x%04X, %v), want (0x%04X, true)", name, uint32(got), ok, uint32(want))
		}
	}
}

func TestNameResolverASCIIFastPath(t *testing.T) {
	r := NewNameResolver(nil)
	for _, name := range []string{"a", "Z", "5"} {
		got, ok := r.Resolve(name)
		if !ok {
			t.Errorf("Resolve(%q) failed", name)
		}
		want := name
		if name == "Z" {
			want = "z"
		}
		if got != Keysym(want[0]) {
			t.Errorf("Resolve(%q) = 0x%04X, want 0x%04X", name, uint32(got), want[0])
		}
	}
}

func TestNameResolverFallback(t *testing.T) {
	called := false
	r := NewNameResolver(func(name string) (Keysym, bool) {
		called = true
		if name == "XF86AudioMute" {
			return 0x1008ff12, true
		}
		return NoSymbol, false
	})
	sym, ok := r.Resolve("XF86AudioMute")
	if !ok || sym != 0x1008ff12 {
		t.Fatalf("Resolve via fallback = (0x%08X, %v)", uint32(sym), ok)
	}
	if !called {
		t.Error("fallback was not consulted")
	}
}

func TestNameResolverUnknown(t *testing.T) {
	r := NewNameResolver(nil)
	if _, ok := r.Resolve("not-a-real-key"); ok {
		t.Error("unknown multi-char name should not resolve without a fallback")
	}
}

func TestIsModifierKeysym(t *testing.T) {
	if !IsModifierKeysym(0xffe1) { // Shift_L
		t.Error("Shift_L should be a modifier")
	}
	if IsModifierKeysym(Keysym('a')) {
		t.Error("'a' should not be a modifier")
	}
}

func TestKeysymNameRoundTrip(t *testing.T) {
	if got := Keysym(0xff1b).Name(); got != "esc" && got != "escape" {
		t.Errorf("Name() for Escape = %q", got)
	}
	if got := Keysym('a').Name(); got != "a" {
		t.Errorf("Name() for 'a' = %q, want \"a\"", got)
	}
	if got := UnicodeKeysym('—').Name(); got != "—" {
		t.Errorf("Name() for em dash keysym = %q, want \"—\"", got)
	}
}
