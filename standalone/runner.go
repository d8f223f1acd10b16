package standalone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/monojs/monojs/colors"
	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/loader"
	"github.com/monojs/monojs/permissions"
)

// worker is the slice of the engine a sealed-binary run drives. Tests
// substitute a fake to exercise the run sequence without an interpreter.
type worker interface {
	Bootstrap(ctx context.Context) error
	ExecuteModule(ctx context.Context, specifier string) error
	DispatchEvent(ctx context.Context, name string) error
	RunEventLoop(ctx context.Context) error
	Close() error
}

// newWorker builds the worker for an embedded program. Overridden in
// tests.
var newWorker = func(cfg engine.Config, code string) (worker, error) {
	eng, err := engine.New(engine.WithDiskCache())
	if err != nil {
		return nil, err
	}
	w, err := eng.NewWorker(cfg, loader.NewSingle(code))
	if err != nil {
		eng.Close()
		return nil, err
	}
	return &engineWorker{Worker: w, eng: eng}, nil
}

// engineWorker ties the engine's lifetime to the worker's.
type engineWorker struct {
	*engine.Worker
	eng *engine.Engine
}

func (w *engineWorker) Close() error {
	err := w.Worker.Close()
	if cerr := w.eng.Close(); err == nil {
		err = cerr
	}
	return err
}

// TryRun checks whether the running executable is a sealed binary and, if
// so, runs the embedded program. handled is false when the executable is a
// normal CLI build and startup should continue into command dispatch.
func TryRun(args []string) (exitCode int, handled bool) {
	exe, err := os.Executable()
	if err != nil {
		return 0, false
	}

	code, sealed, err := Extract(exe)
	if !sealed {
		return 0, false
	}
	if err != nil {
		reportError(os.Stderr, colors.Enabled(), err)
		return 1, true
	}
	return run(code, args, os.Stderr), true
}

// run executes an embedded program through the full lifecycle: bootstrap,
// module evaluation, the load event, the event loop, then unload.
func run(code string, args []string, stderr io.Writer) int {
	useColor := colors.Enabled()

	var scriptArgs []string
	if len(args) > 1 {
		scriptArgs = args[1:]
	}

	cfg := engine.Config{
		Args:        scriptArgs,
		Permissions: permissions.AllowAll(),
		Unstable:    true,
		NoColor:     !useColor,
		ErrorClass:  ErrorClass,
		CreateWorker: func(specifier string) error {
			return errors.New("workers are not supported in self-contained binaries")
		},
	}

	w, err := newWorker(cfg, code)
	if err != nil {
		reportError(stderr, useColor, err)
		return 1
	}
	defer w.Close()

	ctx := context.Background()
	steps := []func() error{
		func() error { return w.Bootstrap(ctx) },
		func() error { return w.ExecuteModule(ctx, loader.EmbeddedSpecifier) },
		func() error { return w.DispatchEvent(ctx, "load") },
		func() error { return w.RunEventLoop(ctx) },
		func() error { return w.DispatchEvent(ctx, "unload") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			engine.Logger().Debug("sealed run failed",
				zap.String("class", ErrorClass(err)),
				zap.Error(err))
			reportError(stderr, useColor, err)
			return 1
		}
	}
	return 0
}

func reportError(w io.Writer, useColor bool, err error) {
	fmt.Fprintf(w, "%s: %s\n", colors.ErrorLabel(useColor), err)
}
