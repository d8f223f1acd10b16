// Package loader provides the module loaders a worker can be bound to.
//
// Two implementations exist: [FS], which resolves specifiers against the
// filesystem for normal CLI runs, and [Single], which serves exactly one
// in-memory module inside a sealed binary. The worker treats them
// uniformly through the [Loader] interface; which one is used is decided
// by the execution mode at construction time.
package loader

import (
	"context"
	"errors"
)

// Source is a loaded module body together with the specifier it was
// requested under and the specifier it was found at. The two differ only
// when a loader follows a redirect; neither built-in loader does.
type Source struct {
	Code      string
	Specified string
	Found     string
}

// Loader resolves and loads modules for a worker.
//
// Load takes a context because the engine's loader contract is
// asynchronous: a filesystem or network loader may block. Single never
// does I/O but honors the same shape.
type Loader interface {
	// Resolve turns a specifier, relative to referrer, into the canonical
	// specifier Load accepts. Referrer may be empty for the main module.
	Resolve(specifier, referrer string) (string, error)

	// Load returns the module source for a resolved specifier.
	Load(ctx context.Context, specifier string) (Source, error)
}

// ErrUnsupported is returned by Single for any specifier other than the
// embedded one. Sealed binaries carry a single flattened module; resolution
// must fail loudly rather than fall back to a filesystem that isn't there.
var ErrUnsupported = errors.New("self-contained binaries don't support module loading")
