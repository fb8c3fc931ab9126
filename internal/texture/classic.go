package texture

import (
	"fmt"
	"image"
	"strings"

	"des-level-obj/internal/pig"
)

// ClassicSource resolves classic level textures: a texture number selects
// a PIG bitmap through the HAM texture list, and the palette colors it.
type ClassicSource struct {
	textures pig.TextureList
	pig      *pig.Pig
	palette  *pig.Palette
	byName   map[string]int // lowercase bitmap name → bitmap index
}

// NewClassicSource combines the decoded HAM texture list, PIG file and
// palette.
func NewClassicSource(textures pig.TextureList, p *pig.Pig, pal *pig.Palette) *ClassicSource {
	s := &ClassicSource{textures: textures, pig: p, palette: pal, byName: make(map[string]int)}
	for i, bm := range p.Bitmaps {
		key := strings.ToLower(bm.Name)
		if _, dup := s.byName[key]; !dup {
			s.byName[key] = i + 1
		}
	}
	return s
}

// TextureName returns the bitmap name of level texture number tmap.
func (s *ClassicSource) TextureName(tmap int) (string, bool) {
	idx, ok := s.textures.Bitmap(tmap)
	if !ok {
		return "", false
	}
	bm, ok := s.pig.Info(idx)
	if !ok {
		return "", false
	}
	return bm.Name, true
}

// Resolve decodes the bitmap called name and applies the palette.
func (s *ClassicSource) Resolve(name string) (*image.NRGBA, error) {
	idx, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, notFound("pig", name)
	}
	pix, err := s.pig.Pixels(idx)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", name, err)
	}
	bm, _ := s.pig.Info(idx)
	return s.palette.NRGBA(pix, bm.Width, bm.Height), nil
}
