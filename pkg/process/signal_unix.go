//go:build !windows

package process

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// signalName returns the conventional SIG* name for a signal.
func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
