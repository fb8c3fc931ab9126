package pig

import (
	"fmt"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

const (
	hamSignature  = 0x214d4148 // "HAM!"
	hamMaxVersion = 3
)

// TextureList maps level texture numbers to PIG bitmap indices.
type TextureList []uint16

// DecodeHAM reads the texture list at the start of a HAM file.
func DecodeHAM(data []byte) (TextureList, error) {
	r := binio.FromBytes(data)
	if sig := r.U32(); sig != hamSignature {
		if r.Err() != nil {
			return nil, fmt.Errorf("ham: %w", r.Err())
		}
		return nil, format.Wrap("ham", format.ErrBadMagic, "signature %#x", sig)
	}
	version := r.I32()
	if version < 1 || version > hamMaxVersion {
		return nil, format.Wrap("ham", format.ErrUnsupportedVersion, "version %d", version)
	}
	if version < 3 {
		r.I32() // sound offset
	}
	n := int(r.I32())
	if n < 0 || int64(n)*2 > r.Remaining() {
		return nil, format.Errorf("ham", "texture count %d", n)
	}
	list := make(TextureList, n)
	for i := range list {
		list[i] = r.U16()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("ham: %w", err)
	}
	return list, nil
}

// Bitmap returns the bitmap index for texture number tmap.
func (l TextureList) Bitmap(tmap int) (int, bool) {
	if tmap < 0 || tmap >= len(l) {
		return 0, false
	}
	return int(l[tmap]), true
}
