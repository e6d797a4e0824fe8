package dispatch

import (
	"fmt"
	"os/exec"
	"syscall"
)

// ProcessSpawner launches Exec actions detached from kseqi: no
// stdin/stdout piping, and placed in its own session so it survives
// kseqi's own process group and signal handling (spec.md §3's Exec
// case). Grounded on keystorm's internal/integration/process package,
// which spawns and detaches editor-integration subprocesses the same
// way, adapted to drop keystorm's output-capture plumbing since
// nothing in kseqi consumes a spawned process's output.
type ProcessSpawner struct{}

// NewProcessSpawner creates a ProcessSpawner.
func NewProcessSpawner() *ProcessSpawner { return &ProcessSpawner{} }

// Spawn starts argv[0] with the remaining elements as arguments,
// detached, and does not wait for it to exit.
func (ProcessSpawner) Spawn(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec action has no argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", argv[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
