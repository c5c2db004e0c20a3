//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop serve and check. SIGHUP covers a closed terminal
// session; ssohelp has no configuration to reload.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
