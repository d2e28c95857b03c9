// Package classfile parses the binary JVM class-file container: the byte
// reader, the constant pool, the top-level class structure and the
// descriptor mini-language. It is the leaf layer the bytecode decoder and
// lifter sit on top of.
package classfile

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Reader decodes the big-endian, length-prefixed primitives the class-file
// format is built from. It reads from an in-memory byte slice and tracks
// nothing beyond its read offset, which it reports on failure.
type Reader struct {
	r    io.Reader
	pos  int64
	data []byte // full backing buffer, for slice reads (e.g. code bytes)
}

// NewReader wraps a class-file byte buffer.
func NewReader(data []byte) *Reader {
	return &Reader{r: nil, data: data}
}

func (r *Reader) read(n int) ([]byte, error) {
	if int64(len(r.data))-r.pos < int64(n) {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "read %d bytes at offset %d", n, r.pos)
	}
	b := r.data[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return b, nil
}

// U1 reads one unsigned byte.
func (r *Reader) U1() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U2 reads a big-endian unsigned 16-bit value.
func (r *Reader) U2() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U4 reads a big-endian unsigned 32-bit value.
func (r *Reader) U4() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// I1 reads a signed byte.
func (r *Reader) I1() (int8, error) {
	b, err := r.U1()
	return int8(b), err
}

// I2 reads a big-endian signed 16-bit value.
func (r *Reader) I2() (int16, error) {
	v, err := r.U2()
	return int16(v), err
}

// I4 reads a big-endian signed 32-bit value.
func (r *Reader) I4() (int32, error) {
	v, err := r.U4()
	return int32(v), err
}

// U8 reads a big-endian unsigned 64-bit value.
func (r *Reader) U8() (uint64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Bytes reads n raw bytes verbatim (used for UTF-8 payloads and code arrays).
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.read(n)
}

// Pos returns the current read offset, for error reporting.
func (r *Reader) Pos() int64 { return r.pos }

// Remaining reports whether there is any unread input left.
func (r *Reader) Remaining() bool { return r.pos < int64(len(r.data)) }
