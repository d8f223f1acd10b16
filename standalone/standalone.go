// Package standalone turns the running executable into a distribution
// vehicle for a JavaScript program. Compose appends a program and a
// trailer record to a copy of the current binary; Extract recovers the
// program from such a binary; TryRun checks the running executable on
// startup and, when it is sealed, runs the embedded program instead of
// the normal CLI.
package standalone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/monojs/monojs/trailer"
)

// ErrMalformed marks a file that carries the trailer magic but whose
// payload cannot be recovered.
var ErrMalformed = errors.New("malformed sealed binary")

// CompositionError reports why a sealed binary could not be written.
type CompositionError struct {
	Path   string
	Reason string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("cannot write %s: %s", e.Path, e.Reason)
}

// Compose writes a sealed executable at output: the current executable's
// image, the payload, and a trailer record locating the payload.
//
// Compose refuses to overwrite anything it did not plausibly produce: an
// existing output must itself be a sealed binary.
func Compose(payload []byte, output string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate host executable: %w", err)
	}
	host, err := os.ReadFile(exe)
	if err != nil {
		return fmt.Errorf("read host executable: %w", err)
	}

	output = normalizeOutput(output)
	if info, err := os.Stat(output); err == nil {
		if info.IsDir() {
			return &CompositionError{Path: output, Reason: "target is a directory"}
		}
		if !isSealed(output) {
			return &CompositionError{Path: output, Reason: "file exists and is not a sealed binary"}
		}
	}

	image := make([]byte, 0, len(host)+len(payload)+trailer.Size)
	image = append(image, host...)
	image = append(image, payload...)
	rec := trailer.Encode(uint64(len(host)))
	image = append(image, rec[:]...)

	if err := os.WriteFile(output, image, 0o755); err != nil {
		return fmt.Errorf("write sealed binary: %w", err)
	}
	// WriteFile's mode only applies to files it creates.
	if err := os.Chmod(output, 0o755); err != nil {
		return fmt.Errorf("mark sealed binary executable: %w", err)
	}
	return nil
}

// normalizeOutput appends the conventional executable suffix on Windows.
func normalizeOutput(output string) string {
	if runtime.GOOS == "windows" && !strings.EqualFold(filepath.Ext(output), ".exe") {
		return output + ".exe"
	}
	return output
}

// isSealed reports whether the file at path ends in a valid trailer
// record. Unreadable or short files are not sealed.
func isSealed(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, ok, _ := readTrailer(f)
	return ok
}

// readTrailer decodes the trailer record at the end of f. ok is false when
// f is too short or the magic is absent.
func readTrailer(f *os.File) (offset uint64, ok bool, size int64) {
	info, err := f.Stat()
	if err != nil || info.Size() < trailer.Size {
		return 0, false, 0
	}

	var rec [trailer.Size]byte
	if _, err := f.ReadAt(rec[:], info.Size()-trailer.Size); err != nil {
		return 0, false, 0
	}
	offset, ok = trailer.Decode(rec[:])
	return offset, ok, info.Size()
}
