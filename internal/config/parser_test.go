package config

import "testing"

func TestParseBasicBinding(t *testing.T) {
	bindings, errs := Parse("leftcontrol j = key ctrl+s\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(bindings))
	}
	b := bindings[0]
	if len(b.KeySeq) != 2 || b.KeySeq[0] != "leftcontrol" || b.KeySeq[1] != "j" {
		t.Errorf("KeySeq = %v", b.KeySeq)
	}
	if len(b.Actions) != 1 || b.Actions[0].Kind != "key" {
		t.Fatalf("Actions = %v", b.Actions)
	}
	if len(b.Actions[0].KeyCombos) != 1 || len(b.Actions[0].KeyCombos[0]) != 2 {
		t.Errorf("KeyCombos = %v", b.Actions[0].KeyCombos)
	}
}

func TestParseCosmeticGlyphsAreWhitespace(t *testing.T) {
	bindings, errs := Parse("leftcontrol↘x↗s = exec echo hi\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(bindings) != 1 || len(bindings[0].KeySeq) != 3 {
		t.Fatalf("bindings = %+v", bindings)
	}
}

func TestParseCommentsAndBlankLinesSkipped(t *testing.T) {
	text := "# a comment\n\nleftcontrol j = key ctrl+s  # trailing comment\n"
	bindings, errs := Parse(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(bindings))
	}
}

func TestParseMultipleActionsCommaSeparated(t *testing.T) {
	bindings, errs := Parse(`leftcontrol leftcontrol = text —, mouse 1` + "\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	actions := bindings[0].Actions
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}
	if actions[0].Kind != "text" || actions[0].Text != "—" {
		t.Errorf("actions[0] = %+v", actions[0])
	}
	if actions[1].Kind != "mouse" || actions[1].Button != 1 {
		t.Errorf("actions[1] = %+v", actions[1])
	}
}

func TestParseQuotedTextWithEscapes(t *testing.T) {
	bindings, errs := Parse(`a b = text "line one\nline two"` + "\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := "line one\nline two"
	if got := bindings[0].Actions[0].Text; got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestParseExecArgsWithQuotedArgument(t *testing.T) {
	bindings, errs := Parse(`a b = exec notify-send "hello world"` + "\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	argv := bindings[0].Actions[0].Argv
	want := []string{"notify-send", "hello world"}
	if len(argv) != len(want) || argv[0] != want[0] || argv[1] != want[1] {
		t.Errorf("Argv = %v, want %v", argv, want)
	}
}

func TestParseInvalidLinesContinuePastErrors(t *testing.T) {
	text := "this is not valid\na b = key x\n"
	bindings, errs := Parse(text)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(bindings) != 1 {
		t.Fatalf("got %d bindings, want the valid second line to still load", len(bindings))
	}
}

func TestParseSingleKeySequenceRejected(t *testing.T) {
	_, errs := Parse("a = key x\n")
	if len(errs) != 1 {
		t.Fatalf("single-key sequence should be a parse error, got %v", errs)
	}
}

func TestParseUnknownActionVerb(t *testing.T) {
	_, errs := Parse("a b = frobnicate\n")
	if len(errs) != 1 {
		t.Fatalf("unknown action verb should be a parse error, got %v", errs)
	}
}
