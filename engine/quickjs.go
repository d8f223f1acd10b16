package engine

import (
	_ "embed"

	quickjswasi "github.com/paralin/go-quickjs-wasi"
)

// runtime.js is the driver evaluated by every interpreter instance: it
// installs the event target, the cooperative task queue, and the host-call
// bindings, then reads commands from stdin until EOF.
//
//go:embed runtime.js
var runtimeJS string

// interpreterModule returns the QuickJS WASI binary.
func interpreterModule() []byte {
	return quickjswasi.QuickJSWASM
}

// interpreterArgs builds the argv for an interpreter instance running the
// driver script. --std exposes the std/os modules the driver needs for
// stdin and timer support.
func interpreterArgs(driver string) []string {
	return []string{"qjs", "--std", "-e", driver}
}
