package hostcall

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/monojs/monojs/permissions"
)

// DefaultMaxFileSize bounds fs_read results.
const DefaultMaxFileSize int64 = 10 << 20

// FS provides filesystem host calls checked against a permission grant.
type FS struct {
	perms       permissions.Permissions
	maxFileSize int64
}

// FSOption configures an FS handler.
type FSOption func(*FS)

// WithMaxFileSize caps the size of files fs_read will return.
func WithMaxFileSize(size int64) FSOption {
	return func(f *FS) {
		f.maxFileSize = size
	}
}

// NewFS creates a filesystem handler gated by perms.
func NewFS(perms permissions.Permissions, opts ...FSOption) *FS {
	f := &FS{perms: perms, maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func fsPath(args map[string]any) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", errors.New("path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New("invalid path")
	}
	return abs, nil
}

// Read returns the contents of a file as a string.
func (f *FS) Read(ctx context.Context, args map[string]any) (any, error) {
	path, err := fsPath(args)
	if err != nil {
		return nil, err
	}
	if err := f.perms.CheckRead(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file not found: " + path)
		}
		return nil, errors.New("stat error: " + err.Error())
	}
	if info.Size() > f.maxFileSize {
		return nil, errors.New("file exceeds max read size")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("read error: " + err.Error())
	}
	return string(data), nil
}

// Write writes string content to a file.
func (f *FS) Write(ctx context.Context, args map[string]any) (any, error) {
	path, err := fsPath(args)
	if err != nil {
		return nil, err
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, errors.New("content required")
	}
	if err := f.perms.CheckWrite(path); err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, errors.New("write error: " + err.Error())
	}
	return len(content), nil
}

// Stat returns basic metadata for a path.
func (f *FS) Stat(ctx context.Context, args map[string]any) (any, error) {
	path, err := fsPath(args)
	if err != nil {
		return nil, err
	}
	if err := f.perms.CheckRead(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file not found: " + path)
		}
		return nil, errors.New("stat error: " + err.Error())
	}
	return map[string]any{
		"name":     info.Name(),
		"size":     info.Size(),
		"is_dir":   info.IsDir(),
		"mod_time": info.ModTime().Unix(),
	}, nil
}
