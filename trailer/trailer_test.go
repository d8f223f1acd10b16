package trailer

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	offsets := []uint64{0, 1, 1000, 1 << 20, 1<<40 + 7, 1<<63 + 1}

	for _, want := range offsets {
		rec := Encode(want)
		got, ok := Decode(rec[:])
		if !ok {
			t.Fatalf("Decode(Encode(%d)) not recognized", want)
		}
		if got != want {
			t.Errorf("offset = %d, want %d", got, want)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	rec := Encode(1000)

	if len(rec) != Size {
		t.Fatalf("record length = %d, want %d", len(rec), Size)
	}
	if !bytes.Equal(rec[:8], []byte("m0n0j5v1")) {
		t.Errorf("magic = %q, want %q", rec[:8], "m0n0j5v1")
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0x03, 0xe8}
	if !bytes.Equal(rec[8:], want) {
		t.Errorf("offset bytes = %x, want %x (big-endian)", rec[8:], want)
	}
}

func TestDecodeRejectsForeignBytes(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short", []byte("m0n0j5v1")},
		{"long", bytes.Repeat([]byte{1}, Size+1)},
		{"zeros", make([]byte, Size)},
		{"wrong magic", append([]byte("m1smag1c"), make([]byte, 8)...)},
		{"magic off by one", append([]byte("m0n0j5v2"), make([]byte, 8)...)},
		{"high bytes", bytes.Repeat([]byte{0xff}, Size)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if off, ok := Decode(tt.buf); ok {
				t.Errorf("Decode(%x) = %d, true; want not recognized", tt.buf, off)
			}
		})
	}
}

func TestDecodeTailOfImage(t *testing.T) {
	host := bytes.Repeat([]byte{0x7f}, 1000)
	payload := []byte("console.log(1+1)")
	rec := Encode(uint64(len(host)))

	image := append(append(host, payload...), rec[:]...)

	off, ok := Decode(image[len(image)-Size:])
	if !ok {
		t.Fatal("trailer at end of image not recognized")
	}
	if off != 1000 {
		t.Errorf("offset = %d, want 1000", off)
	}
}
