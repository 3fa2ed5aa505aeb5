//go:build !unix

package regenerate

import (
	"os/exec"
	"time"
)

func setProcessGroup(*exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd, _ time.Duration, _ chan error) {
	_ = cmd.Process.Kill()
}
