package main

import (
	"os"

	"github.com/monojs/monojs/standalone"
)

func main() {
	// A sealed binary runs its embedded program and never reaches command
	// dispatch.
	if code, handled := standalone.TryRun(os.Args); handled {
		os.Exit(code)
	}
	Execute()
}
