//go:build !windows

package app

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/blackwell-systems/reposcan/internal/output"
)

// shutdownSignals are the OS signals that trigger graceful shutdown.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// stopDaemon sends SIGTERM to the daemon named in the PID file and waits
// briefly for it to exit.
func stopDaemon() error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}

	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for processExists(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}

	_ = os.Remove(pidFilePath())
	fmt.Println(output.StyleSuccess.Render(fmt.Sprintf("Stopped daemon (PID %d)", pid)))
	return nil
}

// processExists checks whether a process with the given PID is running.
func processExists(pid int) bool {
	// Signal 0 checks for existence without signaling.
	return syscall.Kill(pid, 0) == nil
}
