package standalone

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/monojs/monojs/trailer"
)

// Extract recovers the embedded program from the executable at path.
//
// ok reports whether the file is a sealed binary at all: a file without
// the trailer magic, including one shorter than a trailer record, is not
// sealed and not an error. err is non-nil only when the file claims to be
// sealed but its payload cannot be recovered.
func Extract(path string) (code string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("open executable: %w", err)
	}
	defer f.Close()

	offset, ok, size := readTrailer(f)
	if !ok {
		return "", false, nil
	}
	if offset > uint64(size-trailer.Size) {
		return "", true, fmt.Errorf("%w: payload offset %d beyond file end", ErrMalformed, offset)
	}

	payload := make([]byte, uint64(size-trailer.Size)-offset)
	if _, err := f.ReadAt(payload, int64(offset)); err != nil {
		return "", true, fmt.Errorf("%w: truncated payload: %v", ErrMalformed, err)
	}
	if !utf8.Valid(payload) {
		return "", true, fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformed)
	}
	return string(payload), true, nil
}
