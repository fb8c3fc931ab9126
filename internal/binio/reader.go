// Package binio reads the little-endian primitives shared by the game file
// formats. A Reader keeps the first error it meets and returns zero values
// afterwards, so decoders check Err once per record instead of per field.
package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/charmap"

	"des-level-obj/internal/format"
)

// maxCString bounds NUL-terminated strings; names in these formats are tiny.
const maxCString = 4096

// Reader decodes little-endian values from a seekable stream.
type Reader struct {
	rs   io.ReadSeeker
	buf  [8]byte
	err  error
	size int64
}

// NewReader wraps rs. Decoders issue many small reads, so rs should be
// in memory (bytes.Reader) rather than a file.
func NewReader(rs io.ReadSeeker) *Reader {
	r := &Reader{rs: rs, size: -1}
	return r
}

// FromBytes is NewReader over a byte slice.
func FromBytes(b []byte) *Reader {
	return &Reader{rs: bytes.NewReader(b), size: int64(len(b))}
}

// Err returns the first error met, if any.
func (r *Reader) Err() error { return r.err }

// Fail records err unless an earlier error is already held.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(n int) []byte {
	b := r.buf[:n]
	if r.err != nil {
		clear(b)
		return b
	}
	if _, err := io.ReadFull(r.rs, b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		clear(b)
	}
	return b
}

func (r *Reader) U8() uint8 { return r.read(1)[0] }
func (r *Reader) I8() int8 { return int8(r.read(1)[0]) }
func (r *Reader) U16() uint16 { return binary.LittleEndian.Uint16(r.read(2)) }
func (r *Reader) I16() int16 { return int16(binary.LittleEndian.Uint16(r.read(2))) }
func (r *Reader) U32() uint32 { return binary.LittleEndian.Uint32(r.read(4)) }
func (r *Reader) I32() int32 { return int32(binary.LittleEndian.Uint32(r.read(4))) }

func (r *Reader) F32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(r.read(4)))
}

// Fix reads a full-precision 16.16 fixed-point value.
func (r *Reader) Fix() format.Fix { return format.Fix(r.I32()) }

// Vec3 reads three float32s.
func (r *Reader) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.F32(), r.F32(), r.F32()}
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || int64(n) > r.Remaining() {
		r.err = fmt.Errorf("binio: read %d bytes: %w", n, io.ErrUnexpectedEOF)
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.rs, b); err != nil {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	return b
}

// Skip advances n bytes.
func (r *Reader) Skip(n int64) {
	if r.err != nil {
		return
	}
	if _, err := r.rs.Seek(n, io.SeekCurrent); err != nil {
		r.err = err
	}
}

// Seek moves to an absolute offset.
func (r *Reader) Seek(off int64) {
	if r.err != nil {
		return
	}
	if off < 0 || off > r.Len() {
		r.err = fmt.Errorf("binio: seek to %d past end %d: %w", off, r.Len(), io.ErrUnexpectedEOF)
		return
	}
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		r.err = err
	}
}

// Pos returns the current offset.
func (r *Reader) Pos() int64 {
	p, err := r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		r.Fail(err)
	}
	return p
}

// Len returns the total stream length.
func (r *Reader) Len() int64 {
	if r.size >= 0 {
		return r.size
	}
	cur := r.Pos()
	end, err := r.rs.Seek(0, io.SeekEnd)
	if err != nil {
		r.Fail(err)
		return 0
	}
	if _, err := r.rs.Seek(cur, io.SeekStart); err != nil {
		r.Fail(err)
	}
	r.size = end
	return end
}

// Remaining returns the bytes left after the current offset.
func (r *Reader) Remaining() int64 {
	return r.Len() - r.Pos()
}

// CString reads a NUL-terminated Windows-1252 string.
func (r *Reader) CString() string {
	var b []byte
	for r.err == nil {
		c := r.U8()
		if c == 0 || r.err != nil {
			break
		}
		if len(b) == maxCString {
			r.err = format.Errorf("binio", "string longer than %d bytes", maxCString)
			break
		}
		b = append(b, c)
	}
	return decodeString(b)
}

// FixedString reads an n-byte slot holding a NUL-padded string.
func (r *Reader) FixedString(n int) string {
	b := r.Bytes(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return decodeString(b)
}

func decodeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
