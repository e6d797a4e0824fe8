// Package main is the entry point for the kseqi daemon.
package main

import (
	"fmt"
	"os"

	"github.com/wzhd/kseqi/internal/daemon"
	"github.com/wzhd/kseqi/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	level := logging.ParseLevel(os.Getenv("RUST_LOG"))

	app, err := daemon.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kseqid: failed to start: %v\n", err)
		return 1
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "kseqid: %v\n", err)
		return 1
	}

	return 0
}
