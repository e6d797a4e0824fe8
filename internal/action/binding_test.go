package action

import (
	"testing"

	"github.com/wzhd/kseqi/internal/keyseq"
)

func seq(kcs ...keyseq.Keycode) keyseq.Sequence { return keyseq.New(kcs) }

func TestBindingPutAndLookup(t *testing.T) {
	b := NewBinding()
	s := seq(1, 2)
	actions := List{NewText("hi")}

	if _, replaced := b.Put(s, actions, 0); replaced {
		t.Error("first Put of a new sequence should not report a replacement")
	}
	got, ok := b.Lookup(s)
	if !ok || len(got) != 1 || got[0].Text != "hi" {
		t.Fatalf("Lookup after Put = %v, %v", got, ok)
	}
}

func TestBindingPutReplacesAndReportsOld(t *testing.T) {
	b := NewBinding()
	s := seq(1, 2)
	b.Put(s, List{NewText("old")}, 0)

	replaced, ok := b.Put(s, List{NewText("new")}, 0)
	if !ok || len(replaced) != 1 || replaced[0].Text != "old" {
		t.Fatalf("Put replacing an existing sequence = %v, %v", replaced, ok)
	}
	got, _ := b.Lookup(s)
	if got[0].Text != "new" {
		t.Errorf("Lookup after replace = %q, want %q", got[0].Text, "new")
	}
	if b.Len() != 1 {
		t.Errorf("Len() after replace = %d, want 1 (replace must not grow the entry count)", b.Len())
	}
}

func TestBindingGrabKeysIndexesFirstKeycode(t *testing.T) {
	b := NewBinding()
	b.Put(seq(5, 6), List{NewText("a")}, 0x04)
	b.Put(seq(5, 7, 8, 9), List{NewText("b")}, 0x04)
	b.Put(seq(10, 11), List{NewText("c")}, 0)

	if !b.FirstKeycodeGrabbed(5) {
		t.Error("keycode 5 starts two bindings and should be grabbed")
	}
	if !b.FirstKeycodeGrabbed(10) {
		t.Error("keycode 10 starts a binding and should be grabbed")
	}
	if b.FirstKeycodeGrabbed(6) {
		t.Error("keycode 6 never starts a binding and should not be grabbed")
	}

	grabs := b.GrabKeys()
	found := false
	for _, g := range grabs {
		if g.Keycode == 5 && g.Modifiers == 0x04 {
			found = true
		}
	}
	if !found {
		t.Errorf("GrabKeys() = %v, want an entry for keycode 5 under modifier 0x04", grabs)
	}
}

func TestBindingEntriesPreservesInsertionOrder(t *testing.T) {
	b := NewBinding()
	b.Put(seq(1, 2), List{NewText("first")}, 0)
	b.Put(seq(3, 4), List{NewText("second")}, 0)

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	if entries[0].Actions[0].Text != "first" || entries[1].Actions[0].Text != "second" {
		t.Errorf("Entries() order = %q, %q", entries[0].Actions[0].Text, entries[1].Actions[0].Text)
	}
}
