package pig

import (
	"image"

	"des-level-obj/internal/format"
)

// Palette is 256 RGB triples with 8-bit channels.
type Palette [256 * 3]uint8

// Indices at or above transparentIndex render fully transparent.
const transparentIndex = 254

// DecodePalette reads a VGA palette file; channels are stored in 6 bits.
func DecodePalette(data []byte) (*Palette, error) {
	if len(data) < len(Palette{}) {
		return nil, format.Errorf("palette", "%d bytes, want at least %d", len(data), len(Palette{}))
	}
	var p Palette
	for i := range p {
		v := data[i] & 0x3f
		p[i] = v<<2 | v>>4
	}
	return &p, nil
}

// NRGBA applies the palette to an index buffer of w×h pixels.
func (p *Palette) NRGBA(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range pix[:w*h] {
		o := i * 4
		img.Pix[o] = p[int(c)*3]
		img.Pix[o+1] = p[int(c)*3+1]
		img.Pix[o+2] = p[int(c)*3+2]
		if c < transparentIndex {
			img.Pix[o+3] = 0xff
		}
	}
	return img
}
