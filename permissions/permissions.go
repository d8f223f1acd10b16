// Package permissions models the capability grant attached to a worker.
//
// A grant is an immutable value built once per run and threaded through the
// runtime configuration. Host calls check the grant before touching the
// system; a denied check surfaces inside the script as an ordinary error.
package permissions

import "fmt"

// Permissions is the set of capabilities a worker may use.
//
// NetHosts narrows network access to specific hostnames. It is only
// consulted when Net is true; empty means every host.
type Permissions struct {
	Read     bool
	Write    bool
	Net      bool
	Env      bool
	NetHosts []string
}

// AllowAll returns the full-trust grant used by sealed binaries.
func AllowAll() Permissions {
	return Permissions{Read: true, Write: true, Net: true, Env: true}
}

// None returns the zero grant: every capability check fails.
func None() Permissions {
	return Permissions{}
}

// DeniedError reports a capability check failure.
type DeniedError struct {
	Capability string // "read", "write", "net", "env"
	Detail     string
}

func (e *DeniedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("permission denied: %s access to %s (run with --allow-%s)", e.Capability, e.Detail, e.Capability)
	}
	return fmt.Sprintf("permission denied: %s access (run with --allow-%s)", e.Capability, e.Capability)
}

// CheckRead reports whether reading path is allowed.
func (p Permissions) CheckRead(path string) error {
	if !p.Read {
		return &DeniedError{Capability: "read", Detail: path}
	}
	return nil
}

// CheckWrite reports whether writing path is allowed.
func (p Permissions) CheckWrite(path string) error {
	if !p.Write {
		return &DeniedError{Capability: "write", Detail: path}
	}
	return nil
}

// CheckNet reports whether connecting to host is allowed.
func (p Permissions) CheckNet(host string) error {
	if !p.Net {
		return &DeniedError{Capability: "net", Detail: host}
	}
	if len(p.NetHosts) == 0 {
		return nil
	}
	for _, h := range p.NetHosts {
		if h == host {
			return nil
		}
	}
	return &DeniedError{Capability: "net", Detail: host}
}

// CheckEnv reports whether reading environment variable name is allowed.
func (p Permissions) CheckEnv(name string) error {
	if !p.Env {
		return &DeniedError{Capability: "env", Detail: name}
	}
	return nil
}
