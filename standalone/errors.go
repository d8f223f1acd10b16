package standalone

import (
	"errors"
	"io/fs"

	"github.com/monojs/monojs/loader"
	"github.com/monojs/monojs/permissions"
)

// ErrorClass labels an error with the class name a script author would
// recognize. Used for diagnostics only; it never changes control flow.
func ErrorClass(err error) string {
	var denied *permissions.DeniedError
	switch {
	case errors.Is(err, loader.ErrUnsupported):
		return "TypeError"
	case errors.As(err, &denied):
		return "PermissionDenied"
	case errors.Is(err, fs.ErrNotExist):
		return "NotFound"
	case errors.Is(err, ErrMalformed):
		return "InvalidData"
	default:
		return "Error"
	}
}
