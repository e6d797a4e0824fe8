// Package x11 is the thin, typed binding over the native X11 display
// library that every other kseqi package talks to: opening the
// display, negotiating the XInput 2.2 and XTEST extensions, querying
// devices and the keyboard mapping, injecting synthetic input, and
// mutating keycode-to-keysym bindings for the dynamic allocator.
//
// Built on github.com/jezek/xgb (a pure-Go X11 protocol library) plus
// its generated xproto and xtest packages. XInput 2.2 has no generated
// xgb package, so xinput2.go hand-rolls the small set of requests
// kseqi needs directly against xgb's extension-registration and raw
// request/reply plumbing.
package x11
