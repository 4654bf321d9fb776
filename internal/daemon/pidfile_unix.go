//go:build !windows

package daemon

import (
	"fmt"
	"syscall"
)

// IsRunning reports the stored PID and whether that process is alive.
func (p *PIDFile) IsRunning() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	// Signal 0 probes for existence without delivering anything.
	return pid, syscall.Kill(pid, 0) == nil
}

// Signal delivers sig to the process named in the file.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	pid, err := p.Read()
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}
	return syscall.Kill(pid, sig)
}
