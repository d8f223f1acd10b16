package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FS loads modules from the filesystem. Relative specifiers resolve
// against the referrer's directory, or against root when there is no
// referrer (the main module).
type FS struct {
	root string
}

// NewFS returns a filesystem loader rooted at dir. An empty dir means the
// process working directory.
func NewFS(dir string) *FS {
	if dir == "" {
		dir = "."
	}
	return &FS{root: dir}
}

// Resolve maps a specifier to an absolute file path.
func (f *FS) Resolve(specifier, referrer string) (string, error) {
	if specifier == "" {
		return "", fmt.Errorf("resolve: empty specifier")
	}
	if i := strings.Index(specifier, "://"); i >= 0 {
		return "", fmt.Errorf("resolve %q: %q URLs are not supported", specifier, specifier[:i])
	}
	if filepath.IsAbs(specifier) {
		return filepath.Clean(specifier), nil
	}
	base := f.root
	if referrer != "" {
		base = filepath.Dir(referrer)
	}
	abs, err := filepath.Abs(filepath.Join(base, specifier))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", specifier, err)
	}
	return abs, nil
}

// Load reads a resolved module from disk.
func (f *FS) Load(ctx context.Context, specifier string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(specifier)
	if err != nil {
		return Source{}, fmt.Errorf("load module: %w", err)
	}
	if !utf8.Valid(data) {
		return Source{}, fmt.Errorf("load module %s: not valid UTF-8", specifier)
	}
	return Source{
		Code:      string(data),
		Specified: specifier,
		Found:     specifier,
	}, nil
}
