//go:build windows

package commands

import "errors"

func isProcessRunning(pidPath string) (int, bool) {
	return 0, false
}

func startDaemon() error {
	return errors.New("daemon mode is not supported on Windows, use --foreground")
}
