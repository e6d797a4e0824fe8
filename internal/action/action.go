package action

import "github.com/wzhd/kseqi/internal/keyseq"

// Kind identifies which case of Action is populated.
type Kind int

const (
	// KindText types UTF-8 text character by character.
	KindText Kind = iota
	// KindKeyStroke presses a list of keysyms in order, then releases
	// them in the same order.
	KindKeyStroke
	// KindMouseClick presses and releases a single pointer button.
	KindMouseClick
	// KindRepeat replays the previous action list n additional times.
	// Valid only in the first position of an action list.
	KindRepeat
	// KindExec spawns a detached external process.
	KindExec
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindKeyStroke:
		return "key"
	case KindMouseClick:
		return "mouse"
	case KindRepeat:
		return "repeat"
	case KindExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Action is a tagged union over the five action cases spec.md §3
// defines. Exactly one of the kind-specific fields is meaningful,
// selected by Kind — modeled as an explicit struct rather than an
// interface hierarchy per design note §9.
type Action struct {
	Kind Kind

	// Text holds the UTF-8 string for KindText.
	Text string

	// Keys holds the keysym list for KindKeyStroke.
	Keys []keyseq.Keysym

	// Button holds the pointer button for KindMouseClick.
	Button uint8

	// Count holds the extra-repeat count for KindRepeat.
	Count uint8

	// Argv holds the command and arguments for KindExec.
	Argv []string
}

// NewText builds a KindText action.
func NewText(s string) Action { return Action{Kind: KindText, Text: s} }

// NewKeyStroke builds a KindKeyStroke action.
func NewKeyStroke(keys []keyseq.Keysym) Action {
	return Action{Kind: KindKeyStroke, Keys: keys}
}

// NewMouseClick builds a KindMouseClick action.
func NewMouseClick(button uint8) Action {
	return Action{Kind: KindMouseClick, Button: button}
}

// NewRepeat builds a KindRepeat action.
func NewRepeat(n uint8) Action { return Action{Kind: KindRepeat, Count: n} }

// NewExec builds a KindExec action.
func NewExec(argv []string) Action { return Action{Kind: KindExec, Argv: argv} }

// List is an ordered list of actions bound to one sequence.
type List []Action
