// Package keyseq defines the key identifiers (keysym, keycode, symbolic
// name) and the Sequence container used to recognize a run of
// press/release events as a configured binding.
package keyseq
