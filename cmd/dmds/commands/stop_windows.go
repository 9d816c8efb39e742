//go:build windows

package commands

import (
	"errors"
	"fmt"
	"os"
)

// stopProcess terminates the dmds server process. Windows has no SIGTERM,
// so both modes kill the process.
func stopProcess(process *os.Process, pid int, force bool) error {
	fmt.Printf("Terminating process %d...\n", pid)

	err := process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return errProcessDone
	}
	if err != nil {
		return fmt.Errorf("failed to terminate process: %w", err)
	}
	return nil
}
