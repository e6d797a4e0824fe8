package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsedAction is one parsed action before resolution against the
// live display layout.
type ParsedAction struct {
	Kind string // "text", "key", "mouse", "repeat", "exec"

	Text string // KindText

	// KeyCombos holds one slice of key names per key_combo for a
	// "key" action ("ctrl+x ctrl+s" -> [["ctrl","x"],["ctrl","s"]]).
	KeyCombos [][]string

	Button      uint8  // "mouse"
	RepeatCount uint8  // "repeat"
	Argv        []string // "exec"
}

// ParsedBinding is one line of the config file, parsed but not yet
// resolved to keysyms/keycodes.
type ParsedBinding struct {
	Line    int
	KeySeq  []string // key names, in order
	Actions []ParsedAction
}

// ParseError describes a single malformed line. Parsing continues
// past a ParseError so the rest of the file still loads, per spec.md
// §7's "config parse error" taxonomy.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse parses the full config file text into bindings, collecting
// one ParseError per malformed line and continuing past it.
func Parse(text string) ([]ParsedBinding, []error) {
	var bindings []ParsedBinding
	var errs []error

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		stripped := stripComment(raw)
		stripped = strings.TrimSpace(stripped)
		if stripped == "" {
			continue
		}

		pb, err := parseLine(stripped, lineNo)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bindings = append(bindings, pb)
	}
	return bindings, errs
}

// stripComment removes a trailing "# ... " comment, honoring the one
// case of quoting the grammar allows inside an action's text argument
// (a '#' inside a double-quoted string is not a comment start).
func stripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && inQuote:
			i++ // skip escaped char
		case c == '"':
			inQuote = !inQuote
		case c == '#' && !inQuote:
			return line[:i]
		}
	}
	return line
}

func parseLine(line string, lineNo int) (ParsedBinding, error) {
	eq := indexUnquoted(line, '=')
	if eq == -1 {
		return ParsedBinding{}, &ParseError{Line: lineNo, Msg: "missing '='"}
	}

	seqPart := strings.TrimSpace(line[:eq])
	actionPart := strings.TrimSpace(line[eq+1:])

	keySeq, err := parseKeySeq(seqPart)
	if err != nil {
		return ParsedBinding{}, &ParseError{Line: lineNo, Msg: err.Error()}
	}

	actions, err := parseActionList(actionPart)
	if err != nil {
		return ParsedBinding{}, &ParseError{Line: lineNo, Msg: err.Error()}
	}

	return ParsedBinding{Line: lineNo, KeySeq: keySeq, Actions: actions}, nil
}

// parseKeySeq splits a key_seq into key names. The cosmetic ↘/↗
// glyphs are treated purely as whitespace, per spec.md §6.
func parseKeySeq(s string) ([]string, error) {
	s = strings.ReplaceAll(s, "↘", " ")
	s = strings.ReplaceAll(s, "↗", " ")
	names := strings.Fields(s)
	if len(names) < 2 {
		return nil, fmt.Errorf("key sequence needs at least 2 keys, got %d", len(names))
	}
	for _, n := range names {
		if !isKeyName(n) {
			return nil, fmt.Errorf("invalid key name %q", n)
		}
	}
	return names, nil
}

func isKeyName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// parseActionList splits on commas that are not inside a quoted
// string, then parses each action.
func parseActionList(s string) ([]ParsedAction, error) {
	parts := splitUnquoted(s, ',')
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty action list")
	}

	actions := make([]ParsedAction, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty action in list")
		}
		a, err := parseAction(p)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseAction(s string) (ParsedAction, error) {
	verb, rest := splitFirstWord(s)
	switch verb {
	case "text":
		text, err := parseTextArg(rest)
		if err != nil {
			return ParsedAction{}, err
		}
		return ParsedAction{Kind: "text", Text: text}, nil
	case "key":
		combos := strings.Fields(rest)
		if len(combos) == 0 {
			return ParsedAction{}, fmt.Errorf("key action needs at least one key_combo")
		}
		var parsed [][]string
		for _, c := range combos {
			names := strings.Split(c, "+")
			for _, n := range names {
				if !isKeyName(n) {
					return ParsedAction{}, fmt.Errorf("invalid key name %q in key_combo %q", n, c)
				}
			}
			parsed = append(parsed, names)
		}
		return ParsedAction{Kind: "key", KeyCombos: parsed}, nil
	case "mouse":
		n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 8)
		if err != nil {
			return ParsedAction{}, fmt.Errorf("mouse action needs a u8 button number: %w", err)
		}
		return ParsedAction{Kind: "mouse", Button: uint8(n)}, nil
	case "repeat":
		n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 8)
		if err != nil {
			return ParsedAction{}, fmt.Errorf("repeat action needs a u8 count: %w", err)
		}
		return ParsedAction{Kind: "repeat", RepeatCount: uint8(n)}, nil
	case "exec":
		argv, err := parseArgs(rest)
		if err != nil {
			return ParsedAction{}, err
		}
		if len(argv) == 0 {
			return ParsedAction{}, fmt.Errorf("exec action needs at least one argument")
		}
		return ParsedAction{Kind: "exec", Argv: argv}, nil
	default:
		return ParsedAction{}, fmt.Errorf("unknown action %q", verb)
	}
}

func splitFirstWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i == -1 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " \t")
}

// parseTextArg parses the argument to a "text" action: either a
// quoted string with escapes, or the rest of the comma-delimited
// argument verbatim, trimmed.
func parseTextArg(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "\"") {
		val, _, err := unquote(s)
		return val, err
	}
	return s, nil
}

// parseArgs splits the rest of an "exec" action into its arguments,
// honoring quoted barewords.
func parseArgs(s string) ([]string, error) {
	var args []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			val, n, err := unquote(s[i:])
			if err != nil {
				return nil, err
			}
			args = append(args, val)
			i += n
			continue
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		args = append(args, s[start:i])
	}
	return args, nil
}

// unquote parses a double-quoted string starting at s[0] == '"',
// decoding the escape pairs spec.md §6 lists: \n \r \t \b \f \\ \/ \".
// It returns the decoded value and the number of bytes consumed from
// s (including both quotes).
func unquote(s string) (value string, consumed int, err error) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0, fmt.Errorf("expected opening quote")
	}
	var sb strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			return sb.String(), i + 1, nil
		}
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return "", 0, fmt.Errorf("unterminated quoted string")
}

// indexUnquoted finds the first occurrence of c outside any
// double-quoted span, or -1 if none.
func indexUnquoted(s string, c byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && inQuote:
			i++
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == c && !inQuote:
			return i
		}
	}
	return -1
}

// splitUnquoted splits s on c, ignoring occurrences of c inside a
// double-quoted span.
func splitUnquoted(s string, c byte) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && inQuote:
			i++
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == c && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
