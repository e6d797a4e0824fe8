// Package main is the entry point for kseqi-keys, a small diagnostic
// tool that prints every raw key event kseqi would see, grouped one
// run per line, so a user can discover a device's keycodes or debug a
// binding that isn't matching.
package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/wzhd/kseqi/internal/keyseq"
	"github.com/wzhd/kseqi/internal/x11"
)

func main() {
	os.Exit(run())
}

func run() int {
	display, err := x11.Open("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "kseqi-keys: %v\n", err)
		return 1
	}
	defer display.Close()

	if err := display.SelectRawKeyEvents(); err != nil {
		fmt.Fprintf(os.Stderr, "kseqi-keys: subscribing to input events: %v\n", err)
		return 1
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	// A real terminal gets each key flushed immediately so the user
	// sees keys land as they press them; a piped/redirected output is
	// flushed once per completed run.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	down := make(map[keyseq.Keycode]bool)
	lineOpen := false

	for {
		ev, err := display.NextEvent()
		if err != nil {
			fmt.Fprintf(os.Stderr, "kseqi-keys: %v\n", err)
			return 1
		}
		if ev.Kind != x11.EventRawKey {
			continue
		}

		sym := keysymFor(display, ev.Keycode)
		glyph := "↘" // ↘, press
		if !ev.Press {
			glyph = "↗" // ↗, release
		}
		fmt.Fprintf(out, "%s%s ", sym.Name(), glyph)
		lineOpen = true
		if interactive {
			out.Flush()
		}

		if ev.Press {
			down[ev.Keycode] = true
		} else {
			delete(down, ev.Keycode)
		}
		if len(down) == 0 && lineOpen {
			fmt.Fprintln(out)
			out.Flush()
			lineOpen = false
		}
	}
}

func keysymFor(display *x11.Display, kc keyseq.Keycode) keyseq.Keysym {
	syms := display.KeysymsForKeycode(kc)
	if len(syms) == 0 {
		return keyseq.NoSymbol
	}
	return syms[0]
}
