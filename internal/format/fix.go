package format

import "strconv"

// Fix is a 16.16 fixed-point number.
type Fix int32

const fixOne = 1 << 16

// FixFromShift places a reduced-precision stored value at its fixed-point
// position. The shift is part of each field's on-disk definition.
func FixFromShift(raw int32, shift uint) Fix {
	return Fix(raw << shift)
}

// Float returns f as a float64.
func (f Fix) Float() float64 {
	return float64(f) / fixOne
}

func (f Fix) String() string {
	return strconv.FormatFloat(f.Float(), 'f', -1, 64)
}
