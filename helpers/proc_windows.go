package helpers

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func configureProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}
