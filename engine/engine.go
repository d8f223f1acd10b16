package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/xyproto/env/v2"
)

// Version is reported to embedded programs as monojs.version.
const Version = "0.2.0"

// Engine manages the wazero runtime and the compiled QuickJS interpreter.
type Engine struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	mu       sync.Mutex
	compiled wazero.CompiledModule
	closed   bool
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error

	if cfg.diskCache {
		cacheDir := cfg.cacheDir
		if cacheDir == "" {
			cacheDir = defaultCacheDir()
		}
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	return &Engine{runtime: rt, cache: cache}, nil
}

// getCompiled returns the compiled interpreter, compiling on first use.
func (e *Engine) getCompiled(ctx context.Context) (wazero.CompiledModule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errors.New("engine closed")
	}
	if e.compiled != nil {
		return e.compiled, nil
	}

	Logger().Debug("compiling interpreter module")
	compiled, err := e.runtime.CompileModule(ctx, interpreterModule())
	if err != nil {
		return nil, fmt.Errorf("compile interpreter: %w", err)
	}

	e.compiled = compiled
	return compiled, nil
}

// Close releases all resources held by the Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	ctx := context.Background()

	var errs []error
	if err := e.runtime.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if e.cache != nil {
		if err := e.cache.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func defaultCacheDir() string {
	if dir := env.Str("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "monojs")
	}
	if home := env.HomeDir(); home != "" {
		return filepath.Join(home, ".cache", "monojs")
	}
	return filepath.Join(os.TempDir(), "monojs-cache")
}
