//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop a running convert or watch. SIGHUP is included so a
// watcher left in a closed terminal session exits cleanly.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
