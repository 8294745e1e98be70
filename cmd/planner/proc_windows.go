//go:build windows

package main

import "os/exec"

// Windows has no Setsid; the child already runs independently.
func configureServerProc(cmd *exec.Cmd) {}
