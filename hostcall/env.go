package hostcall

import (
	"context"
	"errors"
	"os"

	"github.com/monojs/monojs/permissions"
)

// Env provides the env_get host call, gated by the env permission.
type Env struct {
	perms permissions.Permissions
}

// NewEnv creates an environment handler gated by perms.
func NewEnv(perms permissions.Permissions) *Env {
	return &Env{perms: perms}
}

// Get returns the value of an environment variable, or nil when unset.
func (e *Env) Get(ctx context.Context, args map[string]any) (any, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, errors.New("name required")
	}
	if err := e.perms.CheckEnv(name); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	return nil, nil
}
