package permissions

import (
	"errors"
	"strings"
	"testing"
)

func TestAllowAll(t *testing.T) {
	p := AllowAll()

	checks := map[string]error{
		"read":  p.CheckRead("/etc/hosts"),
		"write": p.CheckWrite("/tmp/out"),
		"net":   p.CheckNet("example.com"),
		"env":   p.CheckEnv("HOME"),
	}
	for name, err := range checks {
		if err != nil {
			t.Errorf("%s check failed under AllowAll: %v", name, err)
		}
	}
}

func TestNoneDeniesEverything(t *testing.T) {
	p := None()

	tests := []struct {
		capability string
		err        error
	}{
		{"read", p.CheckRead("/x")},
		{"write", p.CheckWrite("/x")},
		{"net", p.CheckNet("example.com")},
		{"env", p.CheckEnv("PATH")},
	}

	for _, tt := range tests {
		var denied *DeniedError
		if !errors.As(tt.err, &denied) {
			t.Fatalf("%s check error = %v, want DeniedError", tt.capability, tt.err)
		}
		if denied.Capability != tt.capability {
			t.Errorf("Capability = %q, want %q", denied.Capability, tt.capability)
		}
		if !strings.Contains(tt.err.Error(), "--allow-"+tt.capability) {
			t.Errorf("error %q should name the missing flag", tt.err)
		}
	}
}

func TestNetHostsNarrowing(t *testing.T) {
	p := Permissions{Net: true, NetHosts: []string{"api.example.com"}}

	if err := p.CheckNet("api.example.com"); err != nil {
		t.Errorf("allowed host denied: %v", err)
	}
	if err := p.CheckNet("evil.example.com"); err == nil {
		t.Error("foreign host should be denied")
	}
}
