// Package daemon wires the matcher, grab controller, action
// dispatcher, keysym allocator, and device inventory into the
// single-threaded event loop described in spec.md §5, and handles
// start-up (display/extension negotiation, config load) and shutdown
// (signal handling, mandatory keysym-mapping cleanup).
package daemon
