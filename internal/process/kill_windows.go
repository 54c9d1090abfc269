//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup terminates pid and its children with taskkill /T.
// Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the launcher's own Kill runs afterwards.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- numeric PID
}
