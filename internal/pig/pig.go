// Package pig reads the classic texture data: the PIG bitmap file, the HAM
// texture list that maps texture numbers to bitmaps, and the VGA palette
// used to colour the 8-bit bitmaps.
package pig

import (
	"fmt"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

const (
	pigSignature = 0x47495050 // "PPIG"
	pigVersion   = 2

	bitmapHeaderSize = 18
	bitmapNameLen    = 8

	dbmFlagAnimated = 64
	dbmFrameMask    = 63
)

// Bitmap flags.
const (
	FlagTransparent      = 1
	FlagSuperTransparent = 2
	FlagNoLighting       = 4
	FlagRLE              = 8
	FlagRLEBig           = 32
)

// BitmapInfo is one PIG directory entry.
type BitmapInfo struct {
	Name     string // "name" or "name#frame" for animation frames
	Width    int
	Height   int
	Flags    uint8
	AvgColor uint8
	Offset   int64 // relative to the data area
}

// Pig holds the bitmap directory and the raw file.
type Pig struct {
	Bitmaps   []BitmapInfo // Bitmaps[0] is bitmap index 1
	data      []byte
	dataStart int64
}

// Decode reads a version 2 PIG file.
func Decode(data []byte) (*Pig, error) {
	r := binio.FromBytes(data)
	if sig := r.U32(); sig != pigSignature {
		if r.Err() != nil {
			return nil, fmt.Errorf("pig: %w", r.Err())
		}
		return nil, format.Wrap("pig", format.ErrBadMagic, "signature %#x", sig)
	}
	if v := r.I32(); v != pigVersion {
		return nil, format.Wrap("pig", format.ErrUnsupportedVersion, "version %d", v)
	}
	n := int(r.I32())
	if n < 0 || int64(n)*bitmapHeaderSize > r.Remaining() {
		return nil, format.Errorf("pig", "bitmap count %d", n)
	}
	p := &Pig{Bitmaps: make([]BitmapInfo, n), data: data}
	for i := range p.Bitmaps {
		name := r.FixedString(bitmapNameLen)
		dflags := r.U8()
		w := int(r.U8())
		h := int(r.U8())
		extra := int(r.U8())
		bm := BitmapInfo{
			Name:     name,
			Width:    w + (extra&0x0f)<<8,
			Height:   h + (extra&0xf0)<<4,
			Flags:    r.U8(),
			AvgColor: r.U8(),
			Offset:   int64(r.I32()),
		}
		if dflags&dbmFlagAnimated != 0 {
			bm.Name = fmt.Sprintf("%s#%d", name, dflags&dbmFrameMask)
		}
		p.Bitmaps[i] = bm
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("pig: read directory: %w", err)
	}
	p.dataStart = r.Pos()
	return p, nil
}

// Info returns the directory entry for a bitmap index as stored in the HAM
// texture list (index 0 is the unused placeholder bitmap).
func (p *Pig) Info(index int) (BitmapInfo, bool) {
	if index < 1 || index > len(p.Bitmaps) {
		return BitmapInfo{}, false
	}
	return p.Bitmaps[index-1], true
}

// Pixels returns the 8-bit palette indices of a bitmap, row by row.
func (p *Pig) Pixels(index int) ([]byte, error) {
	bm, ok := p.Info(index)
	if !ok {
		return nil, fmt.Errorf("pig: bitmap index %d out of range", index)
	}
	start := p.dataStart + bm.Offset
	if start < 0 || start > int64(len(p.data)) {
		return nil, format.Errorf("pig", "%s: offset %d outside file", bm.Name, bm.Offset)
	}
	src := p.data[start:]
	if bm.Flags&FlagRLE != 0 {
		return decodeRLE(src, bm)
	}
	n := bm.Width * bm.Height
	if n > len(src) {
		return nil, format.Errorf("pig", "%s: truncated bitmap", bm.Name)
	}
	out := make([]byte, n)
	copy(out, src)
	return out, nil
}

// decodeRLE expands the row-compressed form: an int32 total size, one row
// length per row (16-bit with FlagRLEBig), then the rows. In a row, a byte
// with the top three bits set carries a repeat count in its low five bits and
// is followed by the value; count 0 ends the row.
func decodeRLE(src []byte, bm BitmapInfo) ([]byte, error) {
	r := binio.FromBytes(src)
	r.I32()
	rowLen := make([]int, bm.Height)
	for y := range rowLen {
		if bm.Flags&FlagRLEBig != 0 {
			rowLen[y] = int(r.U16())
		} else {
			rowLen[y] = int(r.U8())
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("pig: %s: %w", bm.Name, err)
	}
	out := make([]byte, bm.Width*bm.Height)
	for y := 0; y < bm.Height; y++ {
		row := r.Bytes(rowLen[y])
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("pig: %s row %d: %w", bm.Name, y, err)
		}
		dst := out[y*bm.Width : (y+1)*bm.Width]
		x := 0
		for i := 0; i < len(row) && x < len(dst); i++ {
			c := row[i]
			if c&0xe0 != 0xe0 {
				dst[x] = c
				x++
				continue
			}
			count := int(c & 0x1f)
			if count == 0 {
				break
			}
			i++
			if i == len(row) {
				return nil, format.Errorf("pig", "%s row %d: run without value", bm.Name, y)
			}
			for ; count > 0 && x < len(dst); count-- {
				dst[x] = row[i]
				x++
			}
		}
	}
	return out, nil
}
