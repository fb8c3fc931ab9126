// Package table decodes the paged game data table and keeps the texture
// pages, which map texture names to bitmap files.
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

const (
	proceduralPaletteLen = 255
	proceduralElemSize   = 8

	procVersion     = 6 // procedural block gains a float and a byte
	bumpVersion     = 5 // trailing bump map reference and a float
	bumpNameVersion = 7 // bump map reference stored by name
)

// Texture is one texture page.
type Texture struct {
	Version      int16
	Name         string
	Filename     string
	Color        mgl32.Vec4 // r, g, b, alpha
	Speed        float32
	SlideU       float32
	SlideV       float32
	Reflectivity float32
	Flags        uint32
}

// Procedural reports whether the texture is generated at run time.
func (t *Texture) Procedural() bool { return t.Flags&format.TextureProcedural != 0 }

// Table is the decoded list of texture pages in file order.
type Table struct {
	Textures []Texture
	byName   map[string]int
}

// Decode reads a table file. Pages other than textures are skipped.
func Decode(rs io.ReadSeeker) (*Table, error) {
	return decode(binio.NewReader(rs))
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(b []byte) (*Table, error) {
	return decode(binio.FromBytes(b))
}

func decode(r *binio.Reader) (*Table, error) {
	t := &Table{byName: make(map[string]int)}
	end := r.Len()
	for r.Pos() < end {
		pos := r.Pos()
		kind := r.U8()
		length := r.I32()
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("table: page at %d: %w", pos, err)
		}
		// The length counts from the length field.
		if length < 4 {
			return nil, format.Errorf("table", "page type %d at %d: length %d", kind, pos, length)
		}
		if kind == format.PageTexture {
			tex, err := decodeTexture(r)
			if err != nil {
				return nil, fmt.Errorf("table: texture page at %d: %w", pos, err)
			}
			t.add(tex)
		}
		r.Seek(pos + 1 + int64(length))
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("table: page type %d at %d: %w", kind, pos, err)
		}
	}
	return t, nil
}

func (t *Table) add(tex Texture) {
	key := strings.ToLower(tex.Name)
	if _, dup := t.byName[key]; !dup {
		t.byName[key] = len(t.Textures)
	}
	t.Textures = append(t.Textures, tex)
}

func decodeTexture(r *binio.Reader) (Texture, error) {
	tex := Texture{Version: r.I16()}
	if err := r.Err(); err != nil {
		return Texture{}, err
	}
	if tex.Version > format.TextureKnownVersion {
		return Texture{}, format.Wrap("table", format.ErrUnsupportedVersion, "texture page version %d", tex.Version)
	}
	tex.Name = r.CString()
	tex.Filename = r.CString()
	r.CString() // unused third name
	tex.Color = mgl32.Vec4{r.F32(), r.F32(), r.F32(), r.F32()}
	tex.Speed = r.F32()
	tex.SlideU = r.F32()
	tex.SlideV = r.F32()
	tex.Reflectivity = r.F32()
	r.U8()  // corona
	r.I32() // damage
	tex.Flags = r.U32()

	if tex.Procedural() {
		r.Skip(proceduralPaletteLen*2 + 3 + 4)
		if tex.Version >= procVersion {
			r.Skip(4 + 1)
		}
		if n := int64(r.I16()); n > 0 {
			r.Skip(n * proceduralElemSize)
		}
	}
	if tex.Version >= bumpVersion {
		if tex.Version < bumpNameVersion {
			r.I16()
		} else {
			r.CString()
		}
		r.F32()
	}
	return tex, r.Err()
}

// Lookup finds a texture by name, ignoring case. When names repeat the
// first page wins.
func (t *Table) Lookup(name string) (*Texture, bool) {
	i, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return &t.Textures[i], true
}
