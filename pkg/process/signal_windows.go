//go:build windows

package process

import "syscall"

// Windows children never terminate by signal; WaitStatus.Signaled is
// always false there, so this is only referenced, not reached.
func signalName(sig syscall.Signal) string {
	return sig.String()
}
