package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/monojs/monojs/hostcall"
	"github.com/monojs/monojs/loader"
)

var ErrWorkerClosed = errors.New("worker closed")

// bootTimeout bounds interpreter startup. Cold compiles of the QuickJS
// module can take a while on first use.
const bootTimeout = 30 * time.Second

// Worker is one execution context: an interpreter instance bound to a
// module loader and a runtime configuration.
type Worker struct {
	eng      *Engine
	cfg      Config
	ld       loader.Loader
	registry *hostcall.Registry

	stdin       *io.PipeWriter
	stdinReader *io.PipeReader
	protocol    *protocolHandler
	module      api.Module

	mu       sync.Mutex
	started  bool
	closed   bool
	startErr error
}

// NewWorker creates a worker bound to ld. The worker does nothing until
// Bootstrap is called.
func (e *Engine) NewWorker(cfg Config, ld loader.Loader) (*Worker, error) {
	if ld == nil {
		return nil, errors.New("worker requires a module loader")
	}
	cfg.fillDefaults()

	return &Worker{
		eng:      e,
		cfg:      cfg,
		ld:       ld,
		registry: hostcall.NewDefaultRegistry(cfg.Permissions, cfg.CreateWorker),
	}, nil
}

// command is one host→driver instruction, sent as a JSON line on stdin.
type command struct {
	Type     string   `json:"type"`
	Code     string   `json:"code,omitempty"`
	Name     string   `json:"name,omitempty"`
	Args     []string `json:"args,omitempty"`
	Unstable bool     `json:"unstable,omitempty"`
	NoColor  bool     `json:"noColor,omitempty"`
	Version  string   `json:"version,omitempty"`
}

// Bootstrap starts the interpreter instance and installs the runtime
// configuration into the script's global scope.
func (w *Worker) Bootstrap(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWorkerClosed
	}
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	compiled, err := w.eng.getCompiled(ctx)
	if err != nil {
		return err
	}

	w.stdinReader, w.stdin = io.Pipe()
	w.protocol = newProtocolHandler(context.Background(), w.registry, w.stdin, w.cfg.Stderr)

	moduleConfig := wazero.NewModuleConfig().
		WithStdout(w.cfg.Stdout).
		WithStderr(w.protocol).
		WithStdin(w.stdinReader).
		WithArgs(interpreterArgs(runtimeJS)...).
		WithName("")

	instErr := make(chan error, 1)
	go func() {
		mod, err := w.eng.runtime.InstantiateModule(context.Background(), compiled, moduleConfig)
		if err != nil {
			instErr <- fmt.Errorf("bootstrap worker: %w", err)
			return
		}
		w.mu.Lock()
		w.module = mod
		w.mu.Unlock()
	}()

	select {
	case <-w.protocol.readySignaled():
	case err := <-instErr:
		w.mu.Lock()
		w.startErr = err
		w.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(bootTimeout):
		return errors.New("worker start timeout")
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	Logger().Debug("worker bootstrapped", zap.Strings("args", w.cfg.Args))
	return w.send(ctx, command{
		Type:     "bootstrap",
		Args:     w.cfg.Args,
		Unstable: w.cfg.Unstable,
		NoColor:  w.cfg.NoColor,
		Version:  Version,
	})
}

// ExecuteModule resolves specifier through the worker's loader, loads the
// module body, and evaluates it to completion.
func (w *Worker) ExecuteModule(ctx context.Context, specifier string) error {
	resolved, err := w.ld.Resolve(specifier, "")
	if err != nil {
		return err
	}
	src, err := w.ld.Load(ctx, resolved)
	if err != nil {
		return err
	}

	Logger().Debug("execute module", zap.String("specifier", src.Found))
	return w.send(ctx, command{Type: "exec", Code: src.Code})
}

// Eval evaluates a script snippet in the worker's global scope.
func (w *Worker) Eval(ctx context.Context, code string) error {
	return w.send(ctx, command{Type: "exec", Code: code})
}

// DispatchEvent fires a lifecycle event ("load", "unload") at listeners
// the script registered.
func (w *Worker) DispatchEvent(ctx context.Context, name string) error {
	return w.send(ctx, command{Type: "event", Name: name})
}

// RunEventLoop drives the script's cooperative task queue (pending
// microtasks and timers) until no further work remains.
func (w *Worker) RunEventLoop(ctx context.Context) error {
	return w.send(ctx, command{Type: "drain"})
}

func (w *Worker) send(ctx context.Context, cmd command) error {
	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return ErrWorkerClosed
	case !w.started:
		err := w.startErr
		w.mu.Unlock()
		if err != nil {
			return err
		}
		return errors.New("worker not bootstrapped")
	}
	w.mu.Unlock()

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	w.protocol.resetDone()
	done := w.protocol.done()
	if err := w.protocol.writeLine(data); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && w.cfg.ErrorClass != nil {
			Logger().Debug("script error",
				zap.String("class", w.cfg.ErrorClass(err)),
				zap.Error(err))
		}
		return err
	}
}

// Close tears down the interpreter instance. Closing the stdin pipe makes
// the driver's command loop see EOF and exit.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.stdinReader != nil {
		w.stdinReader.Close()
	}
	if w.stdin != nil {
		w.stdin.Close()
	}
	if w.module != nil {
		w.module.Close(context.Background())
	}
	return nil
}
