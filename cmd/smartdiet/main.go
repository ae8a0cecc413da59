// Command smartdiet is the local-first SmartDiet CLI: it keeps the profile,
// meals and fasting sessions in a SQLite database on this machine.
package main

import (
	"fmt"
	"os"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
