package dispatch

import (
	"golang.org/x/text/unicode/norm"

	"github.com/wzhd/kseqi/internal/keyseq"
)

// runningKind tags which of the three running-action shapes is
// active. Modeled as an explicit tagged struct rather than an
// interface hierarchy, per spec.md §9's design note against deep
// class hierarchies for this exact piece of state.
type runningKind int

const (
	runningText runningKind = iota
	runningKeys
	runningMouse
)

// runningAction is the dispatcher's single in-flight action. Only the
// fields relevant to Kind are meaningful at any given time.
type runningAction struct {
	kind runningKind

	// runningText
	runes    []rune
	textIdx  int
	pressing bool
	shifted  bool
	settled  bool

	// runningKeys
	keys    []keyseq.Keysym
	keysIdx int

	// runningMouse
	button uint8
}

// newTextRunning prepares a Text action for dispatch. The text is
// first normalized to NFC so a character composed of a base-plus-
// combining-mark sequence (as many input methods and config-file
// editors produce) collapses to the single precomposed keysym the
// allocator's def_syms/mut_syms tables expect, instead of silently
// desyncing into two separate, likely-unmapped code points.
func newTextRunning(s string) *runningAction {
	return &runningAction{kind: runningText, runes: []rune(norm.NFC.String(s)), pressing: true}
}

func newKeysRunning(keys []keyseq.Keysym) *runningAction {
	return &runningAction{kind: runningKeys, keys: keys, pressing: true}
}

func newMouseRunning(button uint8) *runningAction {
	return &runningAction{kind: runningMouse, button: button, pressing: true}
}
