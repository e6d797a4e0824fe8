// Package matcher implements the sequence matcher: the buffering
// state machine that watches raw device key events, decides when a
// run of held keys is a configured binding, an unmatched run that
// must be replayed, a disqualified run that is forwarded live, or a
// modifier-only run that is silently dropped.
package matcher
