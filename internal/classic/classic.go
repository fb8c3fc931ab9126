// Package classic decodes the segment-based level format: a header of
// section offsets, the mine (vertices and segments) and the game data header.
package classic

import (
	"fmt"
	"io"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

const (
	mineVersion     = 0
	mineFilenameLen = 15
	pofNameLen      = 13

	levelNameVersion = 14
	pofNamesVersion  = 19

	// neighbor mask bit that announces the special/matcen/value block
	specialBit = 1 << NumSides

	wallNone   = 255
	tmapMask   = 0x7fff
	tmap2Flag  = 0x8000
	lightShift = 4
	uvShift    = 5
	lShift     = 1
)

// Decode reads a classic level from rs.
func Decode(rs io.ReadSeeker) (*Level, error) {
	return decode(binio.NewReader(rs))
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(b []byte) (*Level, error) {
	return decode(binio.FromBytes(b))
}

func decode(r *binio.Reader) (*Level, error) {
	tag := r.U32()
	version := r.I32()
	mineOffset := int64(r.I32())
	gameOffset := int64(r.I32())
	r.I32() // hostage text offset
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("classic: read header: %w", err)
	}
	if tag != format.ClassicLevelTag {
		return nil, format.Wrap("classic", format.ErrBadMagic, "level signature %#x", tag)
	}
	if version != format.ClassicLevelVersion {
		return nil, format.Wrap("classic", format.ErrUnsupportedVersion, "level version %d", version)
	}

	r.Seek(mineOffset)
	mine, err := DecodeMine(r)
	if err != nil {
		return nil, err
	}
	lvl := &Level{Mine: mine}
	if gameOffset > 0 {
		r.Seek(gameOffset)
		game, err := DecodeGameInfo(r)
		if err != nil {
			return nil, err
		}
		lvl.Game = game
	}
	return lvl, nil
}

// DecodeMine reads the mine body at the current position.
func DecodeMine(r *binio.Reader) (Mine, error) {
	version := r.U8()
	numVerts := int(r.I16())
	numSegs := int(r.I16())
	if err := r.Err(); err != nil {
		return Mine{}, fmt.Errorf("classic: read mine header: %w", err)
	}
	if version != mineVersion {
		return Mine{}, format.Wrap("classic", format.ErrUnsupportedVersion, "mine data version %d", version)
	}
	if numVerts < 0 || numSegs < 0 {
		return Mine{}, format.Errorf("classic", "mine counts %d/%d", numVerts, numSegs)
	}
	if int64(numVerts)*12 > r.Remaining() {
		return Mine{}, fmt.Errorf("classic: %d vertices: %w", numVerts, io.ErrUnexpectedEOF)
	}
	m := Mine{Vertices: make([]Vector, numVerts)}
	for i := range m.Vertices {
		m.Vertices[i] = Vector{r.Fix(), r.Fix(), r.Fix()}
	}
	m.Segments = make([]Segment, 0, min(numSegs, int(r.Remaining()/16)))
	for i := 0; i < numSegs; i++ {
		seg := DecodeSegment(r)
		if err := r.Err(); err != nil {
			return Mine{}, fmt.Errorf("classic: read segment %d: %w", i, err)
		}
		m.Segments = append(m.Segments, seg)
	}
	return m, nil
}

// DecodeSegment reads one segment record.
func DecodeSegment(r *binio.Reader) Segment {
	var s Segment
	mask := r.U8()
	for i := range s.Children {
		if mask&(1<<i) != 0 {
			s.Children[i] = r.I16()
		} else {
			s.Children[i] = NoNeighbor
		}
	}
	for i := range s.Verts {
		s.Verts[i] = r.I16()
	}
	if mask&specialBit != 0 {
		s.Special = r.U8()
		s.MatcenNum = r.I8()
		s.Value = r.I16()
	} else {
		s.MatcenNum = -1
	}
	s.StaticLight = format.FixFromShift(int32(r.U16()), lightShift)

	wallMask := r.U8()
	for i := range s.Sides {
		s.Sides[i].WallNum = NoNeighbor
		if wallMask&(1<<i) != 0 {
			if w := r.U8(); w != wallNone {
				s.Sides[i].WallNum = int16(w)
			}
		}
	}
	for i := range s.Sides {
		if !s.HasSide(i) {
			continue
		}
		side := &s.Sides[i]
		tmap := r.U16()
		side.TMap = int16(tmap & tmapMask)
		if tmap&tmap2Flag != 0 {
			side.TMap2 = r.U16()
		}
		for j := range side.UVLs {
			side.UVLs[j] = UVL{
				U: format.FixFromShift(int32(r.I16()), uvShift),
				V: format.FixFromShift(int32(r.I16()), uvShift),
				L: format.FixFromShift(int32(r.U16()), lShift),
			}
		}
	}
	return s
}

// DecodeGameInfo reads the game data header at the current position.
func DecodeGameInfo(r *binio.Reader) (*GameInfo, error) {
	start := r.Pos()
	sig := r.U16()
	g := &GameInfo{Version: r.U16(), Size: r.I32()}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("classic: read game info: %w", err)
	}
	if sig != format.GameInfoSignature {
		return nil, format.Wrap("classic", format.ErrBadMagic, "game info signature %#x", sig)
	}
	g.MineFilename = r.FixedString(mineFilenameLen)
	g.Level = r.I32()
	r.I32() // second level slot, unused
	g.Player = Table{Offset: r.I32(), Size: r.I32()}
	for _, t := range []*Table{&g.Objects, &g.Walls, &g.Doors, &g.Triggers, &g.Links, &g.Control, &g.Matcens} {
		*t = Table{Offset: r.I32(), Count: r.I32(), Size: r.I32()}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("classic: read game info: %w", err)
	}

	// The header declares its own size; the level name follows it.
	if g.Size > 0 {
		r.Seek(start + int64(g.Size))
	}
	if g.Version >= levelNameVersion {
		g.LevelName = r.CString()
	}
	if g.Version >= pofNamesVersion {
		n := int(r.U16())
		if int64(n)*pofNameLen > r.Remaining() {
			return nil, fmt.Errorf("classic: %d pof names: %w", n, io.ErrUnexpectedEOF)
		}
		g.PofNames = make([]string, n)
		for i := range g.PofNames {
			g.PofNames[i] = r.FixedString(pofNameLen)
		}
	}
	// Sub-table offsets are absolute file positions.
	if g.Objects.Offset > -1 && g.Objects.Count > 0 {
		r.Seek(int64(g.Objects.Offset))
		g.ObjectSlots = make([]Object, min(int(g.Objects.Count), 1<<16))
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("classic: read game info: %w", err)
	}
	return g, nil
}
