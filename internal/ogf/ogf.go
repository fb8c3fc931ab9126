// Package ogf decodes OutRage bitmaps: a TGA-like header followed by a
// run-length compressed body of 16-bit pixels.
package ogf

import (
	"bufio"
	"image"
	"io"
	"strings"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
	"des-level-obj/internal/rle"
)

// PixelFormat is the layout of a 16-bit pixel.
type PixelFormat int

const (
	// Format1555 is one alpha bit then 5 bits each of red, green, blue.
	Format1555 PixelFormat = iota
	// Format4444 is 4 bits each of alpha, red, green, blue.
	Format4444
)

// Bitmap is a decoded OutRage image.
type Bitmap struct {
	Name    string
	Type    uint8
	Width   int
	Height  int
	Mips    int
	TopDown bool // rows stored top to bottom (descriptor bit 0x20)
	Pix     []uint16
}

// Format returns the pixel layout selected by the image type.
func (b *Bitmap) Format() PixelFormat {
	if b.Type == format.Image4444CompressedMip {
		return Format4444
	}
	return Format1555
}

// oafHeaderLen is the animation header in front of the first frame of an
// .oaf entry.
const oafHeaderLen = 7

// Decode reads one bitmap record from r.
func Decode(r io.Reader) (*Bitmap, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(bufio.NewReader(r))
		if err != nil {
			return nil, err
		}
		return decode(binio.FromBytes(b))
	}
	return decode(binio.NewReader(rs))
}

// DecodeEntry decodes an archive entry named name, skipping the animation
// header when the entry is an .oaf clip so the first frame is returned.
func DecodeEntry(name string, data []byte) (*Bitmap, error) {
	if strings.HasSuffix(strings.ToLower(name), ".oaf") {
		if len(data) < oafHeaderLen {
			return nil, format.Errorf("ogf", "%s: short animation header", name)
		}
		data = data[oafHeaderLen:]
	}
	return decode(binio.FromBytes(data))
}

func compressed(t uint8) bool {
	switch t {
	case format.Image4444CompressedMip, format.Image1555CompressedMip,
		format.ImageNewCompressedMip, format.ImageCompressedMip,
		format.ImageCompressedOGF, format.ImageCompressedOGF8Bit:
		return true
	}
	return false
}

func recognized(t uint8) bool {
	switch t {
	case format.ImageTGA2, format.ImageTGA10, format.ImageOutrageTGA,
		format.ImageCompressedOGF, format.ImageCompressedMip,
		format.ImageNewCompressedMip, format.Image1555CompressedMip,
		format.Image4444CompressedMip:
		return true
	}
	return false
}

func decode(r *binio.Reader) (*Bitmap, error) {
	idLen := int(r.U8())
	colorMapType := r.U8()
	typ := r.U8()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if colorMapType != 0 {
		return nil, format.Errorf("ogf", "color map type %d", colorMapType)
	}
	if !recognized(typ) {
		return nil, format.Errorf("ogf", "unknown image type %d", typ)
	}

	bm := &Bitmap{Type: typ, Mips: 1}
	switch typ {
	case format.Image4444CompressedMip, format.ImageNewCompressedMip, format.Image1555CompressedMip:
		bm.Name = r.CString()
	case format.ImageOutrageTGA, format.ImageCompressedMip, format.ImageCompressedOGF:
		bm.Name = r.FixedString(format.BitmapNameLen)
	}
	switch typ {
	case format.Image4444CompressedMip, format.Image1555CompressedMip,
		format.ImageCompressedMip, format.ImageNewCompressedMip:
		bm.Mips = int(r.U8())
	}

	r.Skip(9)
	bm.Width = int(r.I16())
	bm.Height = int(r.I16())
	depth := r.U8()
	descriptor := r.U8()
	r.Skip(int64(idLen))
	if err := r.Err(); err != nil {
		return nil, err
	}
	if depth != 24 && depth != 32 {
		return nil, format.Errorf("ogf", "%s: pixel depth %d", bm.Name, depth)
	}
	if d := descriptor & 0x0f; d != 0 && d != 8 {
		return nil, format.Errorf("ogf", "%s: descriptor %#x", bm.Name, descriptor)
	}
	if bm.Width < 0 || bm.Height < 0 {
		return nil, format.Errorf("ogf", "%s: size %dx%d", bm.Name, bm.Width, bm.Height)
	}
	bm.TopDown = descriptor&0x20 != 0

	if !compressed(typ) {
		return nil, format.Errorf("ogf", "%s: uncompressed image type %d is not supported", bm.Name, typ)
	}
	pix, err := rle.Decode(r, bm.Width*bm.Height, rle.U16)
	if err != nil {
		return nil, err
	}
	bm.Pix = pix
	return bm, nil
}

func expand5(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}

func expand4(v uint16) uint8 {
	return uint8(v<<4 | v)
}

// NRGBA expands the bitmap to 8 bits per channel, top row first.
func (b *Bitmap) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	is4444 := b.Format() == Format4444
	for y := 0; y < b.Height; y++ {
		src := y
		if !b.TopDown {
			src = b.Height - 1 - y
		}
		row := b.Pix[src*b.Width : (src+1)*b.Width]
		o := img.PixOffset(0, y)
		for _, n := range row {
			p := img.Pix[o : o+4 : o+4]
			if is4444 {
				p[0] = expand4(n>>8&0xf)
				p[1] = expand4(n>>4&0xf)
				p[2] = expand4(n&0xf)
				p[3] = expand4(n >> 12)
			} else {
				p[0] = expand5(n>>10&0x1f)
				p[1] = expand5(n>>5&0x1f)
				p[2] = expand5(n&0x1f)
				if n&0x8000 != 0 {
					p[3] = 0xff
				}
			}
			o += 4
		}
	}
	return img
}
