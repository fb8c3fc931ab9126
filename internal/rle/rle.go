// Package rle expands the run-length command streams used by compressed
// bitmaps and room volume lights.
package rle

import (
	"fmt"
	"io"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

// Run counts outside [MinRun, MaxRun] (other than the literal command 0)
// are invalid.
const (
	MinRun = 2
	MaxRun = 250
)

// Decode reads (count, value) commands until exactly total values are
// produced. Count 0 emits one literal value; counts in [MinRun, MaxRun]
// repeat the value. A run that would pass total is cut at total. A total
// the remaining input cannot produce fails with io.ErrUnexpectedEOF before
// anything is allocated.
func Decode[T any](r *binio.Reader, total int, value func(*binio.Reader) T) ([]T, error) {
	// Every command is a count byte plus at least one value byte.
	if total < 0 || int64(total) > r.Remaining()/2*MaxRun {
		return nil, fmt.Errorf("rle: %d values from %d bytes: %w", total, r.Remaining(), io.ErrUnexpectedEOF)
	}
	out := make([]T, total)
	n := 0
	for n < total {
		cmd := int(r.U8())
		v := value(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		switch {
		case cmd == 0:
			out[n] = v
			n++
		case cmd >= MinRun && cmd <= MaxRun:
			end := min(n+cmd, total)
			for ; n < end; n++ {
				out[n] = v
			}
		default:
			return nil, format.Errorf("rle", "invalid compression command %d at value %d", cmd, n)
		}
	}
	return out, nil
}

// U8 reads a byte value.
func U8(r *binio.Reader) uint8 { return r.U8() }

// U16 reads a 16-bit value.
func U16(r *binio.Reader) uint16 { return r.U16() }
