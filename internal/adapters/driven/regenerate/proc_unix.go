//go:build unix

package regenerate

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcessGroup starts the command in its own process group so the
// whole tree can be signalled.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGINT to the group, then SIGKILL if the process
// has not exited within grace.
func killProcessGroup(cmd *exec.Cmd, grace time.Duration, waitDone chan error) {
	pgid := cmd.Process.Pid
	_ = syscall.Kill(-pgid, syscall.SIGINT)

	select {
	case err := <-waitDone:
		waitDone <- err
	case <-time.After(grace):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	}
}
