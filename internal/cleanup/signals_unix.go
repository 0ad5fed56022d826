//go:build !windows

package cleanup

import (
	"os"
	"syscall"
)

var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGABRT, syscall.SIGQUIT}
