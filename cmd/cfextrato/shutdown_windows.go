//go:build windows

package main

import "os"

// Windows delivers only Ctrl+C through os/signal.
var shutdownSignals = []os.Signal{os.Interrupt}
