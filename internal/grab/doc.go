// Package grab implements the device grab controller of spec.md
// §4.2: escalating a slave keyboard device to an exclusive grab once
// a configured trigger key is observed, and releasing it when the
// buffered run ends, while maintaining the invariant that at most one
// device is under such a grab at a time.
package grab
