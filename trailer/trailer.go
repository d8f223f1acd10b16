// Package trailer implements the 16-byte record appended to sealed
// executables. The record is the binary's self-identification: an 8-byte
// magic constant followed by the big-endian offset of the embedded program
// within the file.
package trailer

import (
	"bytes"
	"encoding/binary"
)

// Size is the length of an encoded trailer record in bytes.
const Size = 16

// magic identifies a binary produced by `monojs compile`.
var magic = [8]byte{'m', '0', 'n', '0', 'j', '5', 'v', '1'}

// Encode builds a trailer record locating the payload at offset.
func Encode(offset uint64) [Size]byte {
	var rec [Size]byte
	copy(rec[:8], magic[:])
	binary.BigEndian.PutUint64(rec[8:], offset)
	return rec
}

// Decode parses the last Size bytes of an executable image. The second
// return value is false when the magic constant is absent, meaning the
// image is not a sealed binary. That is a signal, not an error: Decode
// never fails on arbitrary bytes.
func Decode(buf []byte) (offset uint64, ok bool) {
	if len(buf) != Size {
		return 0, false
	}
	if !bytes.Equal(buf[:8], magic[:]) {
		return 0, false
	}
	return binary.BigEndian.Uint64(buf[8:]), true
}
