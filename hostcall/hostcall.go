// Package hostcall provides the host functions embedded JavaScript can
// invoke. Each function is gated by the worker's permission grant rather
// than by its mere presence in the registry: a sealed binary registers
// everything under full trust, a normal run registers the same set under
// whatever the CLI flags granted.
package hostcall

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/monojs/monojs/permissions"
)

// Func is a host function callable from the guest. Arguments arrive as the
// decoded JSON object the script passed.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Registry maps host function names to implementations.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds or replaces a host function.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

// Get looks up a host function by name.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// List returns the registered function names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

// NewDefaultRegistry builds the standard registry for a worker: clock,
// filesystem, HTTP, and environment access checked against perms, plus the
// worker_create hook. createWorker decides whether spawning subordinate
// workers is supported in the current mode; sealed binaries install a hook
// that always refuses.
func NewDefaultRegistry(perms permissions.Permissions, createWorker func(specifier string) error) *Registry {
	r := NewRegistry()

	r.Register("time_now", func(ctx context.Context, args map[string]any) (any, error) {
		return float64(time.Now().UnixNano()) / 1e9, nil
	})

	fs := NewFS(perms)
	r.Register("fs_read", fs.Read)
	r.Register("fs_write", fs.Write)
	r.Register("fs_stat", fs.Stat)

	httpHandler := NewHTTP(perms, HTTPConfig{})
	r.Register("http_request", httpHandler.Request)

	envHandler := NewEnv(perms)
	r.Register("env_get", envHandler.Get)

	r.Register("worker_create", func(ctx context.Context, args map[string]any) (any, error) {
		specifier, _ := args["specifier"].(string)
		if createWorker == nil {
			return nil, errors.New("worker creation is not supported in this mode")
		}
		if err := createWorker(specifier); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return r
}
