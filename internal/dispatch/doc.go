// Package dispatch implements the action dispatcher of spec.md §4.3:
// a single-threaded, cooperative, time-sliced executor that turns
// queued actions and buffered replay events into synthesized X11
// input at a pacing the consuming application can observe.
package dispatch
