package engine

import (
	"io"
	"os"

	"github.com/monojs/monojs/permissions"
)

// Config is the runtime configuration of a worker. It is built once per
// run and not mutated afterwards; ambient state (color capability,
// version) is resolved by the caller and threaded in as explicit values.
type Config struct {
	// Args is the argument vector exposed to the script, without the
	// program name.
	Args []string

	// Permissions is the capability grant for host calls.
	Permissions permissions.Permissions

	// Unstable enables unstable runtime features inside the script.
	Unstable bool

	// NoColor tells the script that diagnostic color output is unwanted.
	NoColor bool

	// Stdout and Stderr receive script output. Stderr only carries output
	// the script itself writes; protocol traffic is stripped. Both default
	// to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// ErrorClass labels errors for diagnostics. Optional.
	ErrorClass func(error) string

	// CreateWorker decides whether the script may spawn subordinate
	// workers. A nil hook refuses. Sealed binaries install a hook that
	// always returns a capability-unsupported error.
	CreateWorker func(specifier string) error
}

func (c *Config) fillDefaults() {
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
}
