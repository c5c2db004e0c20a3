//go:build windows

package main

import "os"

// shutdownSignals stop serve and check. Only os.Interrupt is delivered on
// Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
