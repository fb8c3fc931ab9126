package d3level

import (
	"fmt"
	"math"

	"des-level-obj/internal/binio"
)

// span is an inclusive range of file versions.
type span struct {
	min, max int32
}

var always = span{math.MinInt32, math.MaxInt32}

func since(v int32) span { return span{v, math.MaxInt32} }
func before(v int32) span { return span{math.MinInt32, v - 1} }
func between(lo, hi int32) span { return span{lo, hi} }

func (s span) contains(v int32) bool { return v >= s.min && v <= s.max }

// field is one step of a record layout. read runs when the file version
// lies in versions; otherwise absent, if set, fills in the default.
type field[T any] struct {
	name     string
	versions span
	read     func(r *binio.Reader, dst *T)
	absent   func(dst *T)
}

// fields is a record layout, evaluated in order.
type fields[T any] []field[T]

func (fs fields[T]) decode(r *binio.Reader, version int32, dst *T) error {
	for _, f := range fs {
		if !f.versions.contains(version) {
			if f.absent != nil {
				f.absent(dst)
			}
			continue
		}
		f.read(r, dst)
		if err := r.Err(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

func skip[T any](n int64) func(*binio.Reader, *T) {
	return func(r *binio.Reader, _ *T) { r.Skip(n) }
}
