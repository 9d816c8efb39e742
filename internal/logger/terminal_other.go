//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package logger

import "os"

func isTerminal(*os.File) bool { return false }
