// Package keysymalloc implements the dynamic keysym allocator of
// spec.md §4.4: a small ring of spare keycodes whose mapping is
// rewritten on demand so the dispatcher can synthesize arbitrary
// Unicode characters the current layout does not natively expose, and
// that reverts every mutation on shutdown.
package keysymalloc
